package model

// CanvasResolver supplies the pixel dimensions of a stimulus.
// Implementations return an error wrapping a not-found sentinel when the
// stimulus has no canvas resource.
type CanvasResolver interface {
	Resolve(stimulusID int) (Canvas, error)
}

// RenderTarget identifies what a renderer is drawing.
type RenderTarget struct {
	Participant string
	StimulusID  int
	Canvas      Canvas
}

// Renderer turns aggregation results into a displayable artefact and returns
// its location.
type Renderer interface {
	RenderDensity(target RenderTarget, grid *DensityGrid) (string, error)
	RenderPath(target RenderTarget, path *GazePath) (string, error)
	RenderSegments(target RenderTarget, set *SegmentSet) (string, error)
}
