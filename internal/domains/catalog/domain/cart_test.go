package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckCart_DropsUnavailableLines(t *testing.T) {
	showroom, err := NewProduct("p1", "PRD-00000001", validDetails())
	require.NoError(t, err)
	draftDetails := validDetails()
	draftDetails.State = StateDraft
	draft, err := NewProduct("p2", "PRD-00000002", draftDetails)
	require.NoError(t, err)

	lines := []CartLine{
		{Index: 0, ProductID: "p1", Color: "red", Qty: 2},
		{Index: 1, ProductID: "p1", Color: "red", Qty: 3},
		{Index: 2, ProductID: "p1", Color: "blue", Qty: 1},
		{Index: 3, ProductID: "p2", Color: "red", Qty: 1},
		{Index: 4, ProductID: "missing", Color: "red", Qty: 1},
		{Index: 5, ProductID: "p1", Color: "red", Qty: 0},
		{Index: 6, ProductID: "p1", Color: "red", Qty: 1},
	}

	matches := CheckCart(lines, []*Product{showroom, draft, nil})
	require.Len(t, matches, 2)
	require.Equal(t, 0, matches[0].Line.Index)
	require.Equal(t, 6, matches[1].Line.Index)
	require.Same(t, showroom, matches[0].Product)
}

func TestCheckCart_Empty(t *testing.T) {
	require.Empty(t, CheckCart(nil, nil))
}
