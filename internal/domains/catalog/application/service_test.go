package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/adapters/memory"
	catalogtypes "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/ports"
)

type fakeSuppliers map[string]bool

func (f fakeSuppliers) ActiveSupplier(_ context.Context, id string) (bool, error) {
	return f[id], nil
}

func newTestService(t *testing.T, opts ...Option) (*Service, *memory.Repository) {
	t.Helper()
	repo := memory.NewRepository()
	return NewService(repo, fakeSuppliers{"s1": true, "s2": true}, opts...), repo
}

func productInput() catalogtypes.ProductInput {
	return catalogtypes.ProductInput{
		Title:          "Phone",
		Description:    "Refurbished handset",
		Price:          decimal.RequireFromString("120.50"),
		Condition:      "used",
		State:          "showroom",
		ColorVariation: map[string]int{"red": 3, "black": 1},
		SupplierID:     "s1",
		ImageCount:     4,
	}
}

func TestCreate_AssignsCodeAndValidates(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, productInput())
	require.NoError(t, err)
	require.NotEmpty(t, product.ID)
	require.Regexp(t, `^PRD-[0-9A-F]{8}$`, product.ProductCode)

	in := productInput()
	in.ImageCount = 3
	_, err = svc.Create(ctx, in)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrImageCount)

	in = productInput()
	in.ColorVariation = map[string]int{"red": 0, "blue": 0}
	_, err = svc.Create(ctx, in)
	require.ErrorIs(t, err, domain.ErrEmptyQuantity)

	in = productInput()
	in.SupplierID = "retired"
	_, err = svc.Create(ctx, in)
	require.ErrorIs(t, err, ErrInactiveSupplier)

	all, err := repo.List(ctx, ports.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestCreate_RetriesCodeCollisions(t *testing.T) {
	codes := []string{"PRD-AAAAAAAA", "PRD-AAAAAAAA", "PRD-BBBBBBBB"}
	next := 0
	gen := func() string {
		code := codes[next]
		next++
		return code
	}
	svc, _ := newTestService(t, WithCodeGenerator(gen))
	ctx := context.Background()

	first, err := svc.Create(ctx, productInput())
	require.NoError(t, err)
	require.Equal(t, "PRD-AAAAAAAA", first.ProductCode)

	second, err := svc.Create(ctx, productInput())
	require.NoError(t, err)
	require.Equal(t, "PRD-BBBBBBBB", second.ProductCode)
}

func TestUpdate_NotFoundBeforeValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "missing", catalogtypes.ProductInput{})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUpdate_RejectedLeavesStoreUnchanged(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	product, err := svc.Create(ctx, productInput())
	require.NoError(t, err)

	in := productInput()
	in.ImageCount = 0
	in.ColorVariation = map[string]int{"red": -1, "blue": 4}
	_, err = svc.Update(ctx, product.ID, in)
	require.ErrorIs(t, err, domain.ErrNegativeQuantity)

	stored, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"red": 3, "black": 1}, stored.ColorVariation)

	in = productInput()
	in.ImageCount = 0
	in.Title = "Tablet"
	in.SupplierID = "s2"
	updated, err := svc.Update(ctx, product.ID, in)
	require.NoError(t, err)
	require.Equal(t, "Tablet", updated.Title)
	require.Equal(t, "s2", updated.SupplierID)
	require.Equal(t, product.ProductCode, updated.ProductCode)
}

func TestImagesAndState(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	product, err := svc.Create(ctx, productInput())
	require.NoError(t, err)

	_, err = svc.UpdateImages(ctx, product.ID, []string{"a"})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.UpdateImages(ctx, "missing", []string{"a"})
	require.ErrorIs(t, err, ports.ErrNotFound)

	withImages, err := svc.UpdateImages(ctx, product.ID, []string{"1.png", "2.png", "3.png", "4.png"})
	require.NoError(t, err)
	require.Len(t, withImages.Images, 4)

	_, err = svc.SwitchState(ctx, product.ID, "gone")
	require.ErrorIs(t, err, domain.ErrInvalidState)

	drafted, err := svc.SwitchState(ctx, product.ID, "draft")
	require.NoError(t, err)
	require.Equal(t, domain.StateDraft, drafted.State)

	showroom, err := svc.ListShowroom(ctx)
	require.NoError(t, err)
	require.Empty(t, showroom)
}

func TestCheckCart_OnlyShowroomWithStock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	listed, err := svc.Create(ctx, productInput())
	require.NoError(t, err)
	draftInput := productInput()
	draftInput.State = "draft"
	draft, err := svc.Create(ctx, draftInput)
	require.NoError(t, err)

	matches, err := svc.CheckCart(ctx, []domain.CartLine{
		{Index: 0, ProductID: listed.ID, Color: "red", Qty: 3},
		{Index: 1, ProductID: listed.ID, Color: "black", Qty: 2},
		{Index: 2, ProductID: draft.ID, Color: "red", Qty: 1},
		{Index: 3, ProductID: "unknown", Color: "red", Qty: 1},
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, 0, matches[0].Line.Index)

	empty, err := svc.CheckCart(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestReserve_AllOrNothing(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	product, err := svc.Create(ctx, productInput())
	require.NoError(t, err)

	err = svc.Reserve(ctx, []ports.Reservation{
		{ProductID: product.ID, Color: "red", Qty: 2},
		{ProductID: product.ID, Color: "black", Qty: 2},
	})
	require.ErrorIs(t, err, ports.ErrInsufficientStock)
	stored, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, 3, stored.ColorVariation["red"])
	require.Empty(t, stored.SoldInfo)

	err = svc.Reserve(ctx, []ports.Reservation{{ProductID: product.ID, Color: "red", Qty: 0}})
	require.ErrorIs(t, err, ErrInvalidInput)

	err = svc.Reserve(ctx, []ports.Reservation{{ProductID: "missing", Color: "red", Qty: 1}})
	require.ErrorIs(t, err, ports.ErrNotFound)

	require.NoError(t, svc.Reserve(ctx, []ports.Reservation{
		{ProductID: product.ID, Color: "red", Qty: 2},
		{ProductID: product.ID, Color: "red", Qty: 1},
	}))
	stored, err = repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, 0, stored.ColorVariation["red"])
	require.Equal(t, 3, stored.SoldInfo["red"])

	require.NoError(t, svc.Release(ctx, []ports.Reservation{{ProductID: product.ID, Color: "red", Qty: 1}}))
	stored, err = repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.ColorVariation["red"])
	require.Equal(t, 2, stored.SoldInfo["red"])
}

func TestUpdate_KeepsSoldCounters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	product, err := svc.Create(ctx, productInput())
	require.NoError(t, err)
	require.NoError(t, svc.Reserve(ctx, []ports.Reservation{{ProductID: product.ID, Color: "red", Qty: 1}}))

	in := productInput()
	in.ImageCount = 0
	in.ColorVariation = map[string]int{"red": 10}
	updated, err := svc.Update(ctx, product.ID, in)
	require.NoError(t, err)
	require.Equal(t, 10, updated.ColorVariation["red"])
	require.Equal(t, 1, updated.SoldInfo["red"])
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	product, err := svc.Create(ctx, productInput())
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, product.ID, removed.ID)

	_, err = svc.Delete(ctx, product.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		in := productInput()
		in.Title = fmt.Sprintf("Item %d", i)
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}
	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}
