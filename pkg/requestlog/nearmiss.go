package requestlog

// NearMissInfo is a log-friendly summary of why one case refused a request.
// Stored on entries for unmatched requests.
type NearMissInfo struct {
	// CaseIndex is the registration index of the case.
	CaseIndex int `json:"caseIndex"`

	// CaseLabel is the label of the case (may be empty).
	CaseLabel string `json:"caseLabel,omitempty"`

	// Exhausted is set when the case had already been called its exact
	// number of times.
	Exhausted bool `json:"exhausted,omitempty"`

	// Attributes lists the request attributes the case disagreed on.
	Attributes []string `json:"attributes,omitempty"`

	// Reason is a human-readable explanation.
	Reason string `json:"reason"`
}
