package face

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ServiceClient talks to the face recognition service over HTTP.
//
//	POST {base}/models/load  -> 204 once weights are in memory
//	POST {base}/extract      {"image_base64": "..."}
//	  200 {"descriptor": [...], "box": {...}}
//	  404/422 {"error": "no_face"}
type ServiceClient struct {
	base string
	hc   *http.Client
}

func NewServiceClient(baseURL string, hc *http.Client) *ServiceClient {
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	return &ServiceClient{base: strings.TrimRight(baseURL, "/"), hc: hc}
}

type extractRequest struct {
	ImageBase64 string `json:"image_base64"`
}

type extractResponse struct {
	Descriptor []float32    `json:"descriptor"`
	Box        *BoundingBox `json:"box"`
	Error      string       `json:"error,omitempty"`
}

const maxServiceResponse = 1 << 20

func (c *ServiceClient) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/models/load", nil)
	if err != nil {
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxServiceResponse))
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("load models: status %d", resp.StatusCode)
	}
	return nil
}

func (c *ServiceClient) Extract(ctx context.Context, image []byte) (Descriptor, BoundingBox, error) {
	body, err := json.Marshal(extractRequest{ImageBase64: EncodeBase64Image(image)})
	if err != nil {
		return nil, BoundingBox{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, BoundingBox{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, BoundingBox{}, ctxErr
		}
		return nil, BoundingBox{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	var out extractResponse
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxServiceResponse))
	decErr := dec.Decode(&out)

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, BoundingBox{}, ErrNoFace
	case resp.StatusCode/100 != 2:
		return nil, BoundingBox{}, fmt.Errorf("%w: status %d", ErrModelUnavailable, resp.StatusCode)
	case decErr != nil:
		return nil, BoundingBox{}, fmt.Errorf("decode extract response: %w", decErr)
	case len(out.Descriptor) == 0 || out.Box == nil:
		return nil, BoundingBox{}, ErrNoFace
	}
	return Descriptor(out.Descriptor), *out.Box, nil
}

// IsNoFace is a convenience for errors.Is(err, ErrNoFace).
func IsNoFace(err error) bool { return errors.Is(err, ErrNoFace) }
