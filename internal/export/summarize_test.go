package export

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voltcert/certsync/internal/model"
)

func TestSummarize_CountsPresentFields(t *testing.T) {
	s := Summarize(&model.EICDocument{
		ClientName:          "J Smith",
		InstallationAddress: "12 High St",
		SupplyVoltage:       "230",
	})

	assert.ElementsMatch(t, []string{"Client name", "Installation address", "Supply voltage"}, s.TransferredFields)
	assert.Zero(t, s.CircuitCount)
}

func TestSummarize_RequiredFieldsAreFixed(t *testing.T) {
	for name, src := range map[string]*model.EICDocument{
		"nil":      nil,
		"empty":    {},
		"complete": sampleEIC(),
	} {
		t.Run(name, func(t *testing.T) {
			s := Summarize(src)
			assert.Equal(t, requiredAfresh, s.RequiredFields)
		})
	}
}

func TestSummarize_CircuitCount(t *testing.T) {
	src := sampleEIC()
	src.ScheduleOfTests = append(src.ScheduleOfTests, model.EICTestResult{CircuitNumber: "2"})

	s := Summarize(src)
	assert.Equal(t, 2, s.CircuitCount)
}

func TestSummarize_CustomBondingCountsAsPresent(t *testing.T) {
	s := Summarize(&model.EICDocument{CustomMainBondingSize: "16"})
	assert.Contains(t, s.TransferredFields, "Main bonding conductor size")
}

func TestSummarize_EmptyDocument(t *testing.T) {
	s := Summarize(nil)

	assert.NotNil(t, s.TransferredFields)
	assert.Empty(t, s.TransferredFields)
	assert.Equal(t, len(requiredAfresh), len(s.RequiredFields))
	assert.Zero(t, s.CircuitCount)
}
