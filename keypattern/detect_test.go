package keypattern

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uuidKeys(n int) []string {
	ks := make([]string, n)
	for i := range ks {
		ks[i] = uuid.New().String()
	}
	return ks
}

func TestDetectNumericKeys(t *testing.T) {
	m, rejected := DetectWithRejects([]string{"0", "1", "2"}, nil)
	require.NotNil(t, m)
	assert.Equal(t, "positive-integer", m.Detector.Name)
	assert.Equal(t, "[0-9]+", m.Body)

	// Everything above the numeric detectors fails on digit keys.
	assert.Contains(t, rejected, ForBody("[a-zA-Z]+").Body())
	assert.NotContains(t, rejected, "-?[0-9]+")
}

func TestDetectSignedDefersToPositive(t *testing.T) {
	// All plain digits: the signed detector matches but vetoes, so the
	// positive-integer detector wins despite its lower priority.
	m := Detect([]string{"10", "11", "12"}, nil)
	require.NotNil(t, m)
	assert.Equal(t, "positive-integer", m.Detector.Name)

	m = Detect([]string{"-1", "0", "7"}, nil)
	require.NotNil(t, m)
	assert.Equal(t, "signed-integer", m.Detector.Name)
}

func TestDetectUUIDBeatsAlphanumericOverlap(t *testing.T) {
	m := Detect(uuidKeys(4), nil)
	require.NotNil(t, m)
	assert.Equal(t, "uuid", m.Detector.Name)
}

func TestDetectDateKeys(t *testing.T) {
	m := Detect([]string{"2024-01-01", "2024-01-02", "2024-03-01T10:00:00Z"}, nil)
	require.NotNil(t, m)
	assert.Equal(t, "iso-datetime", m.Detector.Name)
}

func TestDetectISOCodesBeatAlphabetic(t *testing.T) {
	m := Detect([]string{"US", "DE", "FR"}, nil)
	require.NotNil(t, m)
	assert.Equal(t, "iso-code", m.Detector.Name)
}

func TestDetectHexKeys(t *testing.T) {
	m := Detect([]string{"0x1a", "0x2b", "0xFF"}, nil)
	require.NotNil(t, m)
	assert.Equal(t, "hex", m.Detector.Name)
}

func TestDetectBelowThreshold(t *testing.T) {
	m, rejected := DetectWithRejects([]string{"0", "1"}, nil)
	assert.Nil(t, m)
	assert.Empty(t, rejected)

	// Empty keys do not count towards the threshold.
	m, rejected = DetectWithRejects([]string{"0", "1", ""}, nil)
	assert.Nil(t, m)
	assert.Empty(t, rejected)
}

func TestDetectMixedKeysRejectsEverything(t *testing.T) {
	m, rejected := DetectWithRejects([]string{"name", "created-at", "x y"}, nil)
	assert.Nil(t, m)
	// "x y" fails every detector including alphabetic.
	assert.Contains(t, rejected, "[a-zA-Z]+")
	assert.Contains(t, rejected, "[0-9]+")
}

func TestDetectHonorsExclude(t *testing.T) {
	exclude := map[string]struct{}{"[0-9]+": {}}
	m, rejected := DetectWithRejects([]string{"0", "1", "2"}, exclude)
	// The positive-integer detector is excluded; the signed detector's
	// deferral has nowhere to go, so it wins itself.
	require.NotNil(t, m)
	assert.Equal(t, "signed-integer", m.Detector.Name)
	assert.Contains(t, rejected, "[0-9]+")
}

func TestDetectExcludeEverything(t *testing.T) {
	exclude := map[string]struct{}{"[0-9]+": {}, "-?[0-9]+": {}}
	m, rejected := DetectWithRejects([]string{"0", "1", "2"}, exclude)
	assert.Nil(t, m)
	assert.Contains(t, rejected, "[0-9]+")
	assert.Contains(t, rejected, "-?[0-9]+")
}

func TestBestForBodiesSame(t *testing.T) {
	m := BestForBodies([]string{"[0-9]+", "[0-9]+"}, nil)
	require.NotNil(t, m)
	assert.Equal(t, "positive-integer", m.Detector.Name)
}

func TestBestForBodiesWidens(t *testing.T) {
	// Positive and signed integer patterns unify under signed integer.
	m := BestForBodies([]string{"[0-9]+", "-?[0-9]+"}, nil)
	require.NotNil(t, m)
	assert.Equal(t, "signed-integer", m.Detector.Name)
}

func TestBestForBodiesIncompatible(t *testing.T) {
	assert.Nil(t, BestForBodies([]string{"[0-9]+", "0[xX][0-9a-fA-F]+"}, nil))
}

func TestBestForBodiesUnknownBody(t *testing.T) {
	assert.Nil(t, BestForBodies([]string{"[0-9]+", "grue.*"}, nil))
}

func TestBestForBodiesBlacklist(t *testing.T) {
	// With positive-integer blacklisted the signed detector's deferral has
	// nowhere to go, so it covers the digit examples itself.
	bl := map[string]struct{}{"[0-9]+": {}}
	m := BestForBodies([]string{"[0-9]+"}, bl)
	require.NotNil(t, m)
	assert.Equal(t, "signed-integer", m.Detector.Name)

	bl["-?[0-9]+"] = struct{}{}
	assert.Nil(t, BestForBodies([]string{"[0-9]+"}, bl))
}

func TestDetectorOrdering(t *testing.T) {
	ds := All()
	require.Len(t, ds, 7)
	for i := 1; i < len(ds); i++ {
		assert.Greater(t, ds[i-1].Priority, ds[i].Priority,
			fmt.Sprintf("%s before %s", ds[i-1].Name, ds[i].Name))
	}
}
