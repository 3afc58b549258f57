// internal/records/source_test.go
package records

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventops/fienta-codectl/internal/fienta"
)

func TestParseRenamePairs(t *testing.T) {
	input := `old,new
OLD10,NEW10
 SPRING , SUMMER

vip,VIP`
	pairs, err := ParseRenamePairs(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	assert.Equal(t, fienta.RenamePair{Old: "OLD10", New: "NEW10"}, pairs[0])
	assert.Equal(t, fienta.RenamePair{Old: "SPRING", New: "SUMMER"}, pairs[1])
	// Case-only pairs still parse; the engine decides whether to skip them.
	assert.Equal(t, fienta.RenamePair{Old: "vip", New: "VIP"}, pairs[2])
}

func TestParseRenamePairsWithoutHeader(t *testing.T) {
	pairs, err := ParseRenamePairs(strings.NewReader("A,B\nC,D\n"))
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "A", pairs[0].Old)
}

func TestParseRenamePairsRejectsShortRows(t *testing.T) {
	_, err := ParseRenamePairs(strings.NewReader("old,new\nLONELY\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected old,new")
}

func TestParseCreateSpecs(t *testing.T) {
	input := `code,amount,unit,order_limit,description
PRESS,100,percent,10,press passes
PARTNER,"7,50",eur,,`
	defaults := fienta.CreateSpec{Amount: 10, Unit: fienta.UnitPercent, TicketLimit: 4}

	specs, err := ParseCreateSpecs(strings.NewReader(input), defaults)
	require.NoError(t, err)

	want := []fienta.CreateSpec{
		{
			Code:        "PRESS",
			Amount:      100,
			Unit:        fienta.UnitPercent,
			OrderLimit:  10,
			TicketLimit: 4,
			Description: "press passes",
		},
		{
			Code:        "PARTNER",
			Amount:      7.5,
			Unit:        fienta.UnitAbsolute,
			TicketLimit: 4,
		},
	}
	if diff := cmp.Diff(want, specs); diff != "" {
		t.Errorf("parsed specs mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCreateSpecsColumnOrderIsFree(t *testing.T) {
	input := "amount,code\n25,LATE\n"
	specs, err := ParseCreateSpecs(strings.NewReader(input), fienta.CreateSpec{Unit: fienta.UnitPercent})
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "LATE", specs[0].Code)
	assert.Equal(t, 25.0, specs[0].Amount)
}

func TestParseCreateSpecsRequiresCodeColumn(t *testing.T) {
	_, err := ParseCreateSpecs(strings.NewReader("amount\n25\n"), fienta.CreateSpec{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no code column")
}

func TestParseCreateSpecsRejectsEmptyCode(t *testing.T) {
	_, err := ParseCreateSpecs(strings.NewReader("code,amount\n,25\n"), fienta.CreateSpec{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty code")
}
