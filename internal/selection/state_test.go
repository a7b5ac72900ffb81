package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/housing-dashboard/internal/feature"
)

func TestParseLayer(t *testing.T) {
	l, err := ParseLayer(" Burden ")
	require.NoError(t, err)
	assert.Equal(t, LayerBurden, l)

	_, err = ParseLayer("zoning")
	assert.ErrorIs(t, err, ErrInvalidLayer)
}

func TestLayerFeatureKind(t *testing.T) {
	assert.Equal(t, feature.KindTract, LayerRent.FeatureKind())
	assert.Equal(t, feature.KindTract, LayerBurden.FeatureKind())
	assert.Equal(t, feature.KindZone, LayerMHA.FeatureKind())
}

func TestValidThreshold(t *testing.T) {
	assert.True(t, ValidThreshold(30))
	assert.True(t, ValidThreshold(50))
	assert.False(t, ValidThreshold(40))
}

func TestYearDomainClamp(t *testing.T) {
	d := YearDomain{Min: 2010, Max: 2022}
	assert.Equal(t, 2010, d.Clamp(1999))
	assert.Equal(t, 2015, d.Clamp(2015))
	assert.Equal(t, 2022, d.Clamp(2030))
}

func TestDefaults(t *testing.T) {
	s := Defaults(YearDomain{Min: 2010, Max: 2022})
	assert.Equal(t, LayerRent, s.Layer)
	assert.Equal(t, 2022, s.Year)
	assert.Equal(t, Threshold50, s.Threshold)
	assert.Nil(t, s.Hovered)
	assert.Nil(t, s.Selected)
	assert.Empty(t, s.Visible)
}

func TestClone_IsDeep(t *testing.T) {
	s := Defaults(YearDomain{Max: 2020})
	s.Hovered = &feature.Ref{Kind: feature.KindTract, ID: "a"}
	s.Selected = &feature.Ref{Kind: feature.KindTract, ID: "b"}
	s.Visible = []feature.Ref{{Kind: feature.KindTract, ID: "a"}}

	c := s.Clone()
	c.Hovered.ID = "x"
	c.Selected.ID = "y"
	c.Visible[0].ID = "z"

	assert.Equal(t, "a", s.Hovered.ID)
	assert.Equal(t, "b", s.Selected.ID)
	assert.Equal(t, "a", s.Visible[0].ID)
}

func TestDedupeRefs(t *testing.T) {
	a := feature.Ref{Kind: feature.KindTract, ID: "a"}
	b := feature.Ref{Kind: feature.KindTract, ID: "b"}
	assert.Equal(t, []feature.Ref{a, b}, DedupeRefs([]feature.Ref{a, b, a}))
	assert.Equal(t, []feature.Ref{}, DedupeRefs(nil))
}
