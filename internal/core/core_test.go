package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestContentReferenceValidate(t *testing.T) {
	tests := []struct {
		name    string
		ref     ContentReference
		wantErr bool
	}{
		{"url only", ContentReference{URL: "https://example.com"}, false},
		{"raw only", ContentReference{RawContent: "some text"}, false},
		{"both", ContentReference{URL: "https://example.com", RawContent: "text"}, false},
		{"empty", ContentReference{}, true},
		{"whitespace", ContentReference{URL: "  ", RawContent: "\n\t"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ref.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidReference) {
					t.Errorf("Expected ErrInvalidReference, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestAcquisitionErrorListsStrategies(t *testing.T) {
	cause := errors.New("boom")
	err := &AcquisitionError{
		Source: SourceVideoPlatform,
		Attempts: []Attempt{
			{Strategy: "transcript", Err: cause},
			{Strategy: "page-description"},
		},
	}

	got := err.Strategies()
	if len(got) != 2 || got[0] != "transcript" || got[1] != "page-description" {
		t.Errorf("Unexpected strategies: %v", got)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected attempt error to be reachable through errors.Is")
	}
	want := "could not acquire video_platform content (transcript: boom; page-description: no content)"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestStageErrorUnwraps(t *testing.T) {
	inner := &AnalysisServiceError{Cause: errors.New("503")}
	err := fmt.Errorf("summarize: %w", &StageError{Stage: StageAnalyze, Source: SourceGenericWeb, Err: inner})

	var svc *AnalysisServiceError
	if !errors.As(err, &svc) {
		t.Fatal("Expected AnalysisServiceError through StageError")
	}
	var stage *StageError
	if !errors.As(err, &stage) || stage.Stage != StageAnalyze {
		t.Errorf("Expected analyze stage, got %+v", stage)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{&InvalidReferenceError{Reason: "bad"}, http.StatusBadRequest},
		{&StageError{Stage: StageNormalize, Err: &EmptyContentError{Length: 3, Min: 50}}, http.StatusUnprocessableEntity},
		{&StageError{Stage: StageAcquire, Err: &AcquisitionError{Source: SourceGenericWeb}}, http.StatusBadGateway},
		{&AnalysisServiceError{Cause: errors.New("x")}, http.StatusServiceUnavailable},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestSourceKindValid(t *testing.T) {
	for _, k := range AllSourceKinds {
		if !k.Valid() {
			t.Errorf("Expected %s to be valid", k)
		}
	}
	if SourceKind("fax").Valid() {
		t.Error("Expected unknown kind to be invalid")
	}
}
