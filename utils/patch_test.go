package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleDTO struct {
	FullName    *string  `json:"full_name"`
	PhoneNumber *string  `json:"phone_number"`
	Balance     *float64 `json:"balance"`
	Hidden      *string  `json:"-"`
}

func TestUpdatesFromPtrDTOKeepsExplicitZero(t *testing.T) {
	name := "Ayse Demir"
	balance := 0.0
	in := sampleDTO{FullName: &name, Balance: &balance}

	updates := UpdatesFromPtrDTO(&in, nil)

	// balance=0 is an explicit value, not "absent".
	assert.Equal(t, map[string]any{
		"full_name": "Ayse Demir",
		"balance":   0.0,
	}, updates)
}

func TestUpdatesFromPtrDTOSkipsNilAndUntagged(t *testing.T) {
	hidden := "nope"
	in := sampleDTO{Hidden: &hidden}

	updates := UpdatesFromPtrDTO(&in, nil)
	assert.Empty(t, updates)
}

func TestUpdatesFromPtrDTOAppliesRenames(t *testing.T) {
	phone := "+90-555-000-0001"
	in := sampleDTO{PhoneNumber: &phone}

	updates := UpdatesFromPtrDTO(&in, map[string]string{"phone_number": "phone"})
	assert.Equal(t, map[string]any{"phone": phone}, updates)
}

func TestNormalizePtrDTOTrimsAndRounds(t *testing.T) {
	name := "  Ayse Demir "
	balance := 10.016
	in := sampleDTO{FullName: &name, Balance: &balance}

	NormalizePtrDTO(&in)

	assert.Equal(t, "Ayse Demir", *in.FullName)
	assert.InDelta(t, 10.02, *in.Balance, 1e-9)
	assert.Nil(t, in.PhoneNumber)
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 10.02, Round2(10.016), 1e-9)
	assert.Equal(t, 0.0, Round2(0))
	assert.InDelta(t, -2.35, Round2(-2.346), 1e-9)
}
