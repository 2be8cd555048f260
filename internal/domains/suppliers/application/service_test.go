package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/adapters/memory"
	suppliertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/ports"
)

type fakeProductRefs map[string]bool

func (f fakeProductRefs) SupplierReferenced(_ context.Context, id string) (bool, error) {
	return f[id], nil
}

func TestRemove_SoftWhenReferencedHardOtherwise(t *testing.T) {
	repo := memory.NewRepository()
	refs := fakeProductRefs{}
	svc := NewService(repo, refs)
	ctx := context.Background()

	referenced, err := svc.Create(ctx, suppliertypes.SupplierInput{Name: "Acme", Email: "acme@example.com", Phone: "1"})
	require.NoError(t, err)
	unreferenced, err := svc.Create(ctx, suppliertypes.SupplierInput{Name: "Globex", Email: "globex@example.com", Phone: "2"})
	require.NoError(t, err)
	refs[referenced.ID] = true

	removed, err := svc.Remove(ctx, referenced.ID)
	require.NoError(t, err)
	require.False(t, removed.IsActive)
	stored, err := repo.GetByID(ctx, referenced.ID)
	require.NoError(t, err)
	require.False(t, stored.IsActive)

	_, err = svc.Remove(ctx, unreferenced.ID)
	require.NoError(t, err)
	_, err = repo.GetByID(ctx, unreferenced.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)

	active, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestCreate_RejectsBlankFields(t *testing.T) {
	svc := NewService(memory.NewRepository(), fakeProductRefs{})

	_, err := svc.Create(context.Background(), suppliertypes.SupplierInput{Name: " ", Email: "a@b.c", Phone: "1"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), suppliertypes.SupplierInput{Name: "A", Email: "nope", Phone: "1"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdate_NotFoundBeforeValidation(t *testing.T) {
	svc := NewService(memory.NewRepository(), fakeProductRefs{})

	_, err := svc.Update(context.Background(), "missing", suppliertypes.SupplierInput{})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUpdate_ReplacesContact(t *testing.T) {
	svc := NewService(memory.NewRepository(), fakeProductRefs{})
	ctx := context.Background()

	created, err := svc.Create(ctx, suppliertypes.SupplierInput{Name: "Acme", Email: "acme@example.com", Phone: "1"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, suppliertypes.SupplierInput{Name: "Acme Ltd", Email: "sales@acme.example", Phone: "2"})
	require.NoError(t, err)
	require.Equal(t, "Acme Ltd", updated.Name)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
}
