package memory

import (
	"context"

	"funnelboard/domain/core"
	"funnelboard/domain/funnel"
	"funnelboard/ports"
)

// Source serves a fixed funnel held in memory
type Source struct {
	name core.FunnelName
	spec funnel.Spec
}

var _ ports.FunnelSource = (*Source)(nil)

// NewSource copies spec so later caller mutation cannot leak in
func NewSource(name core.FunnelName, spec funnel.Spec) *Source {
	spec.Stages = append([]funnel.Stage(nil), spec.Stages...)
	return &Source{name: name, spec: spec}
}

func (s *Source) Name() core.FunnelName { return s.name }

func (s *Source) Funnel(ctx context.Context) (funnel.Spec, error) {
	if err := ctx.Err(); err != nil {
		return funnel.Spec{}, err
	}
	if err := s.spec.Validate(); err != nil {
		return funnel.Spec{}, err
	}
	out := s.spec
	out.Stages = append([]funnel.Stage(nil), s.spec.Stages...)
	return out, nil
}

// DemoAccountCreation is a representative onboarding funnel used when no
// database is configured
func DemoAccountCreation() *Source {
	counts := funnel.AccountCreationCounts{
		TotalAccounts:     4821,
		StepBasicInfo:     4390,
		StepHeadline:      2975,
		StepLocation:      2610,
		StepCompany:       1988,
		StepLinkedIn:      1204,
		StepFinderEnabled: 517,
	}
	return NewSource(funnel.AccountCreationFunnel, counts.Spec())
}
