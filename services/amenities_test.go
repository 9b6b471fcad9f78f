package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"airbnb-harvester/models"
	"airbnb-harvester/utils"
)

// fakeSemantic is a scripted SemanticClassifier for tests.
type fakeSemantic struct {
	amenities map[models.Amenity]bool
	fields    map[models.FieldKey]string
	err       error
	calls     int
}

func (f *fakeSemantic) ClassifyAmenities(_ context.Context, _ string, _ []models.Amenity) (map[models.Amenity]bool, error) {
	f.calls++
	return f.amenities, f.err
}

func (f *fakeSemantic) ExtractFields(_ context.Context, _ string, _ []models.FieldKey) (map[models.FieldKey]string, error) {
	f.calls++
	return f.fields, f.err
}

func TestClassifyPoolTableIsNotAPool(t *testing.T) {
	c := NewAmenityClassifier(nil, utils.NewTestLogger())

	res := c.Classify(context.Background(), "Pool table, billiards room")
	assert.False(t, res.Has(models.AmenityPool))
	assert.True(t, res.Has(models.AmenityBilliards))
}

func TestClassifySwimmingPool(t *testing.T) {
	c := NewAmenityClassifier(nil, utils.NewTestLogger())

	res := c.Classify(context.Background(), "Heated swimming pool")
	assert.True(t, res.Has(models.AmenityPool))
	assert.False(t, res.Has(models.AmenityBilliards))
}

func TestClassifyHotTub(t *testing.T) {
	c := NewAmenityClassifier(nil, utils.NewTestLogger())

	res := c.Classify(context.Background(), "Hot tub on patio")
	assert.True(t, res.Has(models.AmenityJacuzzi))
	assert.True(t, res.Has(models.AmenityBalcony))
}

func TestClassifyPoolTableAndRealPoolCoexist(t *testing.T) {
	c := NewAmenityClassifier(nil, utils.NewTestLogger())

	res := c.Classify(context.Background(), "Pool table in the den, outdoor pool in the garden")
	assert.True(t, res.Has(models.AmenityPool))
	assert.True(t, res.Has(models.AmenityBilliards))
	assert.True(t, res.Has(models.AmenityLargeYard))
}

func TestClassifyKeywordHitSkipsEscalation(t *testing.T) {
	sem := &fakeSemantic{}
	c := NewAmenityClassifier(sem, utils.NewTestLogger())

	res := c.Classify(context.Background(), "Smart TV and washer/dryer")
	assert.True(t, res.Has(models.AmenityTV))
	assert.True(t, res.Has(models.AmenityLaundry))
	assert.Equal(t, 0, sem.calls, "positive keyword pass must not escalate")
}

func TestClassifyEscalatesWhenInconclusive(t *testing.T) {
	sem := &fakeSemantic{amenities: map[models.Amenity]bool{models.AmenityTV: true}}
	c := NewAmenityClassifier(sem, utils.NewTestLogger())

	res := c.Classify(context.Background(), "entertainment center with a large screen")
	assert.Equal(t, 1, sem.calls)
	assert.True(t, res.Has(models.AmenityTV))
	assert.Equal(t, models.ConfidenceRecovered, res.Confidence)
	// omitted keys mean "not determined" and default to false
	assert.False(t, res.Has(models.AmenityPool))
}

func TestClassifyCollaboratorFailureYieldsAnnotatedAllFalse(t *testing.T) {
	sem := &fakeSemantic{err: errors.New("quota exceeded")}
	c := NewAmenityClassifier(sem, utils.NewTestLogger())

	res := c.Classify(context.Background(), "")
	for _, am := range models.AmenityVocabulary {
		assert.False(t, res.Has(am))
	}
	assert.Contains(t, res.FailureCause, "quota exceeded")
}

func TestClassifyNoCollaboratorConfigured(t *testing.T) {
	c := NewAmenityClassifier(nil, utils.NewTestLogger())

	res := c.Classify(context.Background(), "")
	assert.NotEmpty(t, res.FailureCause)
	for _, am := range models.AmenityVocabulary {
		assert.False(t, res.Has(am))
	}
}
