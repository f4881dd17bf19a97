package tools

import "context"

func (s *Service) Health(_ context.Context, _ HealthRequest) (*HealthResponse, error) {
	return &HealthResponse{Status: "ok"}, nil
}
