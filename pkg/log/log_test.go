package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentrywaf/engine/pkg/types"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestWithPhaseAddsPhaseField(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: DebugLevel, JSONOutput: true, Output: &buf})

	WithPhase("request").Info().Msg("phase ran")

	line := decodeLine(t, &buf)
	assert.Equal(t, "request", line["phase"])
	assert.Equal(t, "phase ran", line["message"])
}

func TestWithInterventionAddsActionAndStatus(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: DebugLevel, JSONOutput: true, Output: &buf})

	WithIntervention(types.InterventionBlock, 403).Info().Msg("blocked")

	line := decodeLine(t, &buf)
	assert.Equal(t, types.InterventionBlock.String(), line["intervention_action"])
	assert.EqualValues(t, 403, line["intervention_status"])
}

func TestWithTransactionIDAndRuleIDAreIndependent(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: DebugLevel, JSONOutput: true, Output: &buf})

	WithRuleID("r-1").Info().Msg("rule fired")

	line := decodeLine(t, &buf)
	assert.Equal(t, "r-1", line["rule_id"])
	assert.NotContains(t, line, "tx_id")
}

func TestInitDefaultsToInfoLevelOnUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: Level("nonsense"), JSONOutput: true, Output: &buf})

	Debug("should not appear")
	Info("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
}
