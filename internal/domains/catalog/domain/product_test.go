package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validDetails() Details {
	return Details{
		Title:          "Phone",
		Description:    "Refurbished handset",
		Price:          decimal.RequireFromString("199.99"),
		Condition:      "used",
		State:          StateShowroom,
		ColorVariation: map[string]int{"red": 2, "blue": 0},
		SupplierID:     "s1",
	}
}

func TestNewProduct_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Details)
		want   error
	}{
		{"blank title", func(d *Details) { d.Title = " " }, ErrEmptyTitle},
		{"blank description", func(d *Details) { d.Description = "" }, ErrEmptyDescription},
		{"zero price", func(d *Details) { d.Price = decimal.Zero }, ErrNonPositivePrice},
		{"negative price", func(d *Details) { d.Price = decimal.NewFromInt(-1) }, ErrNonPositivePrice},
		{"blank condition", func(d *Details) { d.Condition = "" }, ErrEmptyCondition},
		{"unknown state", func(d *Details) { d.State = "archived" }, ErrInvalidState},
		{"missing supplier", func(d *Details) { d.SupplierID = "" }, ErrEmptySupplier},
		{"negative variant", func(d *Details) { d.ColorVariation = map[string]int{"red": 5, "blue": -1} }, ErrNegativeQuantity},
		{"empty variants", func(d *Details) { d.ColorVariation = map[string]int{"red": 0} }, ErrEmptyQuantity},
		{"nil variants", func(d *Details) { d.ColorVariation = nil }, ErrEmptyQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDetails()
			tc.mutate(&d)
			_, err := NewProduct("p1", "PRD-00000001", d)
			require.ErrorIs(t, err, tc.want)
		})
	}

	p, err := NewProduct("p1", "PRD-00000001", validDetails())
	require.NoError(t, err)
	require.Equal(t, StateShowroom, p.State)
	require.Empty(t, p.SoldInfo)
	require.NoError(t, p.Validate())
}

func TestApplyDetails_CopiesVariationMap(t *testing.T) {
	d := validDetails()
	p, err := NewProduct("p1", "PRD-00000001", d)
	require.NoError(t, err)

	d.ColorVariation["red"] = 100
	require.Equal(t, 2, p.ColorVariation["red"])
}

func TestNewProductCode_Format(t *testing.T) {
	code := NewProductCode()
	require.True(t, strings.HasPrefix(code, "PRD-"))
	require.Len(t, code, 12)
	require.Equal(t, strings.ToUpper(code), code)
	require.NotEqual(t, code, NewProductCode())
}

func TestSetImages(t *testing.T) {
	p, err := NewProduct("p1", "PRD-00000001", validDetails())
	require.NoError(t, err)

	require.ErrorIs(t, p.SetImages([]string{"a", "b", "c"}), ErrImageCount)
	require.ErrorIs(t, p.SetImages([]string{"a", "b", "c", " "}), ErrImageCount)
	require.Empty(t, p.Images)
	require.Equal(t, "", p.PrimaryImage())

	require.NoError(t, p.SetImages([]string{"a", "b", "c", "d"}))
	require.Equal(t, "a", p.PrimaryImage())
}

func TestValidateImageCount(t *testing.T) {
	require.NoError(t, ValidateImageCount(4, false))
	require.ErrorIs(t, ValidateImageCount(0, false), ErrImageCount)
	require.NoError(t, ValidateImageCount(0, true))
	require.ErrorIs(t, ValidateImageCount(3, true), ErrImageCount)
}

func TestReserveAndRelease(t *testing.T) {
	p, err := NewProduct("p1", "PRD-00000001", validDetails())
	require.NoError(t, err)

	require.ErrorIs(t, p.Reserve("red", 3), ErrInsufficientStock)
	require.ErrorIs(t, p.Reserve("green", 1), ErrInsufficientStock)
	require.ErrorIs(t, p.Reserve("red", 0), ErrInvalidQuantity)

	require.NoError(t, p.Reserve("red", 2))
	require.Equal(t, 0, p.ColorVariation["red"])
	require.Equal(t, 2, p.SoldInfo["red"])
	require.NoError(t, p.Validate())

	require.NoError(t, p.Release("red", 1))
	require.Equal(t, 1, p.ColorVariation["red"])
	require.Equal(t, 1, p.SoldInfo["red"])

	require.NoError(t, p.Release("red", 5))
	require.Equal(t, 0, p.SoldInfo["red"])
}

func TestClone_IsDeep(t *testing.T) {
	p, err := NewProduct("p1", "PRD-00000001", validDetails())
	require.NoError(t, err)
	require.NoError(t, p.SetImages([]string{"a", "b", "c", "d"}))

	clone := p.Clone()
	clone.ColorVariation["red"] = 9
	clone.SoldInfo["red"] = 9
	clone.Images[0] = "z"

	require.Equal(t, 2, p.ColorVariation["red"])
	require.Zero(t, p.SoldInfo["red"])
	require.Equal(t, "a", p.Images[0])
}

func TestValidateVariation_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		variation := rapid.MapOf(
			rapid.StringMatching(`[a-z]{1,6}`),
			rapid.IntRange(-3, 5),
		).Draw(t, "variation")

		hasNegative := false
		positive := 0
		for _, q := range variation {
			if q < 0 {
				hasNegative = true
			}
			if q > 0 {
				positive += q
			}
		}

		err := ValidateVariation(variation)
		switch {
		case hasNegative:
			if err != ErrNegativeQuantity {
				t.Fatalf("expected negative quantity error, got %v", err)
			}
		case positive == 0:
			if err != ErrEmptyQuantity {
				t.Fatalf("expected empty quantity error, got %v", err)
			}
		default:
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
		}
		if TotalQuantity(variation) != positive {
			t.Fatalf("total %d, want %d", TotalQuantity(variation), positive)
		}
	})
}

func TestReserve_NeverGoesNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stock := rapid.IntRange(1, 20).Draw(t, "stock")
		d := validDetails()
		d.ColorVariation = map[string]int{"red": stock}
		p, err := NewProduct("p1", "PRD-00000001", d)
		if err != nil {
			t.Fatal(err)
		}
		requests := rapid.SliceOf(rapid.IntRange(1, 6)).Draw(t, "requests")
		sold := 0
		for _, qty := range requests {
			if p.Reserve("red", qty) == nil {
				sold += qty
			}
			if p.ColorVariation["red"] < 0 {
				t.Fatalf("stock went negative: %d", p.ColorVariation["red"])
			}
		}
		if p.ColorVariation["red"]+p.SoldInfo["red"] != stock || p.SoldInfo["red"] != sold {
			t.Fatalf("stock %d + sold %d does not add up to %d", p.ColorVariation["red"], p.SoldInfo["red"], stock)
		}
	})
}
