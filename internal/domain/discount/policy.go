package discount

import "context"

// Policy toggles the promotional rules. It is a read-only snapshot taken
// once per pricing computation.
type Policy struct {
	// Enabled is the master switch. When false no rule is evaluated.
	Enabled bool
	// PercentageOverThreshold enables the 25% off rule for carts over 12.00.
	PercentageOverThreshold bool
	// FreeCheapestAfterN enables the free cheapest drink rule for 3+ drinks.
	FreeCheapestAfterN bool
}

// AllEnabled returns a policy with every rule switched on.
func AllEnabled() Policy {
	return Policy{Enabled: true, PercentageOverThreshold: true, FreeCheapestAfterN: true}
}

// PolicySource provides the current policy snapshot.
type PolicySource interface {
	Policy(ctx context.Context) (Policy, error)
}

// StaticSource always returns the same policy, typically read from
// configuration at startup.
type StaticSource struct {
	policy Policy
}

var _ PolicySource = (*StaticSource)(nil)

// NewStaticSource creates a StaticSource serving p.
func NewStaticSource(p Policy) *StaticSource {
	return &StaticSource{policy: p}
}

// Policy returns the configured policy.
func (s *StaticSource) Policy(context.Context) (Policy, error) {
	return s.policy, nil
}
