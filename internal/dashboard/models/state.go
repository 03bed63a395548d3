package models

// State is the full dashboard state held by the store. JSON names match the
// persisted snapshot written by earlier dashboard builds, so old snapshots
// hydrate unchanged.
type State struct {
	UserID          string            `json:"userId"`
	UserRole        Role              `json:"userRole"`
	CSRFToken       string            `json:"csrfToken,omitempty"`
	PipelineStages  []PipelineStage   `json:"pipelineStages"`
	GovernanceFlags []GovernanceFlag  `json:"governanceFlags"`
	TribeGraph      *TribeGraph       `json:"tribeGraph,omitempty"`
	Recommendations []Recommendation  `json:"recommendations"`
	Providers       []ProviderScore   `json:"providers"`
	AdvisorSignals  []AdvisorSignal   `json:"advisorSignals"`
	Reviews         []ReviewEntry     `json:"reviews"`
	Certificates    []CertificateMeta `json:"certificates"`
}

// InitialState is the state before bootstrap or hydration: default identity
// and every collection empty.
func InitialState() State {
	id := DefaultIdentity()
	return State{
		UserID:          id.UserID,
		UserRole:        id.UserRole,
		PipelineStages:  []PipelineStage{},
		GovernanceFlags: []GovernanceFlag{},
		Recommendations: []Recommendation{},
		Providers:       []ProviderScore{},
		AdvisorSignals:  []AdvisorSignal{},
		Reviews:         []ReviewEntry{},
		Certificates:    []CertificateMeta{},
	}
}

// Identity extracts the identity fields.
func (s State) Identity() Identity {
	return Identity{UserID: s.UserID, UserRole: s.UserRole, CSRFToken: s.CSRFToken}
}

// Clone returns a deep copy. Nil collections come back as empty slices so a
// hydrated snapshot with missing fields behaves like an initial state.
func (s State) Clone() State {
	out := s
	out.PipelineStages = ClonePipelineStages(s.PipelineStages)
	out.GovernanceFlags = nonNil(cloneSlice(s.GovernanceFlags))
	if s.TribeGraph != nil {
		g := s.TribeGraph.Clone()
		out.TribeGraph = &g
	}
	out.Recommendations = nonNil(cloneSlice(s.Recommendations))
	out.Providers = nonNil(cloneSlice(s.Providers))
	out.AdvisorSignals = CloneAdvisorSignals(s.AdvisorSignals)
	out.Reviews = CloneReviews(s.Reviews)
	out.Certificates = nonNil(cloneSlice(s.Certificates))
	return out
}

// ClonePipelineStages copies stages including their timestamps.
func ClonePipelineStages(in []PipelineStage) []PipelineStage {
	out := make([]PipelineStage, len(in))
	for i, st := range in {
		st.UpdatedAt = cloneTime(st.UpdatedAt)
		out[i] = st
	}
	return out
}

// CloneAdvisorSignals copies signals including evidence and alternatives.
func CloneAdvisorSignals(in []AdvisorSignal) []AdvisorSignal {
	out := make([]AdvisorSignal, len(in))
	for i, sig := range in {
		sig.Evidence = cloneSlice(sig.Evidence)
		sig.Alternatives = cloneSlice(sig.Alternatives)
		out[i] = sig
	}
	return out
}

// CloneReviews copies reviews including highlights.
func CloneReviews(in []ReviewEntry) []ReviewEntry {
	out := make([]ReviewEntry, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// CloneSlice copies a slice of flat values.
func CloneSlice[T any](in []T) []T {
	return nonNil(cloneSlice(in))
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
