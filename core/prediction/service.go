package prediction

import (
	"fmt"

	"github.com/kilianp07/taxifare/core/fare"
	"github.com/kilianp07/taxifare/core/model"
)

// Service predicts fares with a fixed scaler and network.
type Service struct {
	scaler *model.Scaler
	net    *model.Network
	status Status
}

// NewService checks that the artifacts agree with the feature table.
func NewService(art *model.Artifacts) (*Service, error) {
	if art == nil || art.Scaler == nil || art.Network == nil {
		return nil, fmt.Errorf("prediction service: artifacts not loaded")
	}
	n := fare.NumFeatures()
	if art.Scaler.Len() != n || art.Network.InputSize() != n {
		return nil, fmt.Errorf("prediction service: %w: scaler %d, network %d, features %d",
			model.ErrShapeMismatch, art.Scaler.Len(), art.Network.InputSize(), n)
	}
	return &Service{
		scaler: art.Scaler,
		net:    art.Network,
		status: Status{
			ModelLoaded:  true,
			ScalerLoaded: true,
			ModelSource:  string(art.ModelSource),
			ScalerSource: string(art.ScalerSource),
		},
	}, nil
}

// Predict assembles the feature vector, scales it and runs the network.
func (s *Service) Predict(trip fare.Trip) (float64, error) {
	vec, err := trip.Vector()
	if err != nil {
		return 0, err
	}
	x, err := s.scaler.Transform(vec)
	if err != nil {
		return 0, fmt.Errorf("scale features: %w", err)
	}
	y, err := s.net.Forward(x)
	if err != nil {
		return 0, fmt.Errorf("forward pass: %w", err)
	}
	return fare.Round2(fare.Clamp(y)), nil
}

// Status reports the artifact provenance.
func (s *Service) Status() Status { return s.status }
