package cache

// Keyer derives cache keys. Implementations must be deterministic: equal
// inputs always produce equal keys.
type Keyer interface {
	// FrameKey identifies the solved geometry of a document.
	FrameKey(documentHash string, opts FrameKeyOpts) string

	// ArtifactKey identifies one rendered output of a document.
	ArtifactKey(documentHash string, opts ArtifactKeyOpts) string
}

// FrameKeyOpts are the inputs that change solved geometry.
type FrameKeyOpts struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
	Dedupe bool    `json:"dedupe,omitempty"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
	Format string  `json:"format"`
	Dedupe bool    `json:"dedupe,omitempty"`

	// Render settings. Formats that ignore a setting should leave it zero
	// so that equivalent outputs share one entry.
	Labels   bool    `json:"labels,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FrameKey returns "frame:" followed by a hash of the inputs.
func (DefaultKeyer) FrameKey(documentHash string, opts FrameKeyOpts) string {
	return hashKey("frame", documentHash, opts)
}

// ArtifactKey returns "artifact:<format>:" followed by a hash of the inputs.
func (DefaultKeyer) ArtifactKey(documentHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, documentHash, opts)
}
