package videogen

type submitRequest struct {
	Instances  []instance `json:"instances"`
	Parameters parameters `json:"parameters"`
}

type instance struct {
	Prompt string      `json:"prompt"`
	Image  inlineImage `json:"image"`
}

type inlineImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type parameters struct {
	SampleCount int `json:"sampleCount"`
}

// operation is the handle to the asynchronous video job. It is owned and
// mutated by the external service; we only observe it via polling.
type operation struct {
	Name     string             `json:"name"`
	Done     bool               `json:"done"`
	Error    *operationError    `json:"error,omitempty"`
	Response *operationResponse `json:"response,omitempty"`
}

type operationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type operationResponse struct {
	GenerateVideoResponse *generateVideoResponse `json:"generateVideoResponse,omitempty"`
}

type generateVideoResponse struct {
	GeneratedSamples []generatedSample `json:"generatedSamples,omitempty"`
}

type generatedSample struct {
	Video *videoRef `json:"video,omitempty"`
}

type videoRef struct {
	URI string `json:"uri,omitempty"`
}

// videoURI extracts the download locator from a completed operation.
// A well-formed completion without one is ErrNoVideo, which callers keep
// distinct from transport failures.
func (op *operation) videoURI() (string, error) {
	if op.Response == nil || op.Response.GenerateVideoResponse == nil {
		return "", ErrNoVideo
	}
	samples := op.Response.GenerateVideoResponse.GeneratedSamples
	if len(samples) == 0 || samples[0].Video == nil || samples[0].Video.URI == "" {
		return "", ErrNoVideo
	}
	return samples[0].Video.URI, nil
}
