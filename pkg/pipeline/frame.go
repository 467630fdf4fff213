package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/memlayout/pkg/analysis"
	apperr "github.com/matzehuels/memlayout/pkg/errors"
	"github.com/matzehuels/memlayout/pkg/memgraph"
	"github.com/matzehuels/memlayout/pkg/stabilizer"
)

// Frame is one recomputation request as it travels over HTTP, Redis or a
// replay file: the current source text and the analyzer's raw result.
type Frame struct {
	Source string          `json:"source"`
	Result json.RawMessage `json:"result,omitempty"`
}

// HasResult reports whether the frame carries a result payload.
func (f Frame) HasResult() bool {
	trimmed := bytes.TrimSpace(f.Result)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// ErrorBody is the wire form of an analysis or decoding error.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    *int   `json:"line_number,omitempty"`
	Column  *int   `json:"column_number,omitempty"`
}

// NewErrorBody converts err for the wire. Analysis errors keep their
// position; coded errors keep their code.
func NewErrorBody(err error) *ErrorBody {
	if err == nil {
		return nil
	}
	var ae *analysis.AnalysisError
	if errors.As(err, &ae) {
		return &ErrorBody{
			Code:    string(apperr.ErrCodeAnalysis),
			Message: ae.Message,
			Line:    ae.Line,
			Column:  ae.Column,
		}
	}
	code := apperr.GetCode(err)
	if code == "" {
		code = apperr.ErrCodeInternal
	}
	return &ErrorBody{Code: string(code), Message: apperr.UserMessage(err)}
}

// Response is the outcome of one recomputation.
type Response struct {
	Decision    stabilizer.Decision `json:"decision"`
	Generation  string              `json:"generation,omitempty"`
	Graph       memgraph.Graph      `json:"graph"`
	Error       *ErrorBody          `json:"error,omitempty"`
	Diagnostics []string            `json:"diagnostics,omitempty"`
}

// NewResponse builds the response for a stabilizer state.
func NewResponse(st stabilizer.State, diagnostics []error) Response {
	resp := Response{
		Decision:   st.Decision,
		Generation: st.Generation,
		Graph:      st.Graph,
		Error:      NewErrorBody(st.Err),
	}
	if resp.Graph.Nodes == nil {
		resp.Graph.Nodes = []memgraph.Node{}
	}
	if resp.Graph.Edges == nil {
		resp.Graph.Edges = []memgraph.Edge{}
	}
	for _, d := range diagnostics {
		resp.Diagnostics = append(resp.Diagnostics, d.Error())
	}
	return resp
}

// ReadFrames decodes a stream of JSON frames, one after another, as found
// in a JSON Lines replay file.
func ReadFrames(r io.Reader) ([]Frame, error) {
	dec := json.NewDecoder(r)
	var frames []Frame
	for {
		var f Frame
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "decode frame %d", len(frames)+1)
		}
		frames = append(frames, f)
	}
}

// ReadFramesFile reads a replay file.
func ReadFramesFile(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFrames(f)
}
