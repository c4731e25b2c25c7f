package services

import (
	"encoding/json"
	"net/http"

	"github.com/medassist/offline-triage/internal/domain/entities"
)

// Result is an HTTP-shaped answer produced by a service: either a response
// relayed from the dispatcher or one synthesized locally.
type Result struct {
	Status int
	Header http.Header
	Body   []byte
	Source entities.ResponseSource
}

func relay(resp *entities.FetchResponse) *Result {
	return &Result{
		Status: resp.Status,
		Header: resp.Header,
		Body:   resp.Body,
		Source: resp.Source,
	}
}

func jsonResult(status int, source entities.ResponseSource, v any) (*Result, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Result{
		Status: status,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
		Source: source,
	}, nil
}
