package simulation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/google/uuid"
)

// Sentinel phone numbers that never reach a real gateway in simulation mode
const (
	PhoneSuccess   entity.CanonicalPhone = "254700000000"
	PhoneCancelled entity.CanonicalPhone = "254711111111"
	PhoneFailed    entity.CanonicalPhone = "254722222222"
)

// Scenario is the scripted outcome of a simulated payment
type Scenario string

// Scenarios, encoded in the correlation id
const (
	ScenarioSuccess   Scenario = "s"
	ScenarioCancelled Scenario = "c"
	ScenarioFailed    Scenario = "f"
)

// Delays configures how long each scenario stays pending
type Delays struct {
	Success   time.Duration
	Cancelled time.Duration
	Failed    time.Duration
}

// DefaultDelays returns 10s, 15s and 20s
func DefaultDelays() Delays {
	return Delays{
		Success:   10 * time.Second,
		Cancelled: 15 * time.Second,
		Failed:    20 * time.Second,
	}
}

// Simulator scripts outcomes for sentinel phones. All state lives in the
// correlation id, test_<scenario>_<created unix ms>_<random>, so an outcome is a
// pure function of the id and the current time.
type Simulator struct {
	delays Delays
	clock  coreport.TimeProvider
}

// NewSimulator creates a simulator
func NewSimulator(delays Delays, clock coreport.TimeProvider) *Simulator {
	return &Simulator{delays: delays, clock: clock}
}

// ScenarioFor returns the scenario of a sentinel phone
func ScenarioFor(phone entity.CanonicalPhone) (Scenario, bool) {
	switch phone {
	case PhoneSuccess:
		return ScenarioSuccess, true
	case PhoneCancelled:
		return ScenarioCancelled, true
	case PhoneFailed:
		return ScenarioFailed, true
	default:
		return "", false
	}
}

// NewCorrelationID mints an id for a scenario started now
func (s *Simulator) NewCorrelationID(scenario Scenario) string {
	return fmt.Sprintf("%s%s_%d_%s", entity.SimulatedPrefix, scenario,
		s.clock.Now().UnixMilli(), randomHex(12))
}

// NewSecondaryID mints a merchant-side id
func (s *Simulator) NewSecondaryID() string {
	return entity.SimulatedPrefix + "merchant_" + randomHex(10)
}

// Outcome computes the current outcome of a simulated id
func (s *Simulator) Outcome(correlationID string) (entity.Outcome, error) {
	scenario, createdAt, err := parseCorrelationID(correlationID)
	if err != nil {
		return entity.Outcome{}, err
	}

	elapsed := s.clock.Now().Sub(createdAt)
	var code, desc string
	switch scenario {
	case ScenarioSuccess:
		if elapsed > s.delays.Success {
			code, desc = entity.ResultCodeSuccess, "Test payment successful"
		}
	case ScenarioCancelled:
		if elapsed > s.delays.Cancelled {
			code, desc = entity.ResultCodeUserCancelled, "Test payment cancelled"
		}
	case ScenarioFailed:
		if elapsed > s.delays.Failed {
			code, desc = entity.ResultCodeFailed, "Test payment failed"
		}
	}

	if code == "" {
		return entity.OutcomeFromResultCode(entity.ResultCodeProcessing, "Test payment pending"), nil
	}

	outcome := entity.OutcomeFromResultCode(code, desc)
	if outcome.Status == entity.StatusSuccess {
		paidAt := createdAt.Add(s.delays.Success)
		outcome.ReceiptRef = "TEST" + strings.ToUpper(stableHex(correlationID, 6))
		outcome.PaidAt = &paidAt
	}
	return outcome, nil
}

func parseCorrelationID(correlationID string) (Scenario, time.Time, error) {
	rest, ok := strings.CutPrefix(correlationID, entity.SimulatedPrefix)
	if !ok {
		return "", time.Time{}, fmt.Errorf("not a simulated id: %q", correlationID)
	}

	parts := strings.SplitN(rest, "_", 3)
	if len(parts) != 3 {
		return "", time.Time{}, fmt.Errorf("malformed simulated id: %q", correlationID)
	}

	scenario := Scenario(parts[0])
	switch scenario {
	case ScenarioSuccess, ScenarioCancelled, ScenarioFailed:
	default:
		return "", time.Time{}, fmt.Errorf("unknown simulated scenario %q", parts[0])
	}

	millis, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("malformed simulated id: %q", correlationID)
	}

	return scenario, time.UnixMilli(millis).UTC(), nil
}

func randomHex(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// stableHex derives a stable suffix from the id so repeated queries agree on the receipt
func stableHex(correlationID string, n int) string {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(correlationID))
	return strings.ReplaceAll(id.String(), "-", "")[:n]
}
