package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		items []string
	}{
		{"Typical", []string{"Service Provider", "Client"}},
		{"SingleItem", []string{"03/15/2024"}},
		{"PreservesOrderAndContent", []string{"b", "a", "a", " c "}},
		{"Empty", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeStringList(tt.items)
			require.NoError(t, err)

			decoded, err := DecodeStringList(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.items, decoded)
		})
	}
}

func TestEncodeStringListNilBecomesEmptyArray(t *testing.T) {
	encoded, err := EncodeStringList(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(encoded))

	decoded, err := DecodeStringList(encoded)
	require.NoError(t, err)
	assert.NotNil(t, decoded)
	assert.Len(t, decoded, 0)
}

func TestDecodeStringListUnpopulatedColumn(t *testing.T) {
	decoded, err := DecodeStringList(nil)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeStringListRejectsMalformedValue(t *testing.T) {
	_, err := DecodeStringList([]byte(`{"not": "a list"}`))
	assert.Error(t, err)
}

func TestStatusValuesAreOrdered(t *testing.T) {
	statuses := []int{
		StatusCreated,
		StatusTextExtracted,
		StatusInfoExtracted,
		StatusSummarized,
		StatusRisksFound,
		StatusComplete,
	}
	for i, s := range statuses {
		assert.Equal(t, i, s)
	}
}

func TestEmptyUsefulInformation(t *testing.T) {
	info := EmptyUsefulInformation()
	assert.NotNil(t, info.PartiesInvolved)
	assert.NotNil(t, info.EffectiveDates)
	assert.NotNil(t, info.RenewalTerms)
	assert.NotNil(t, info.ComplianceRequirements)
	assert.Len(t, info.PartiesInvolved, 0)
}
