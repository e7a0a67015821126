package grpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"placement/portal/internal/model"
	"placement/portal/internal/repository"
)

type ApplicationReader interface {
	GetApplication(ctx context.Context, applicationID string) (model.Application, error)
	ListApplications(ctx context.Context, filter repository.ApplicationFilter) ([]model.Application, error)
}

// PlacementQueryServer answers read-only application lookups from other
// campus services. Callers are trusted by service token, not by user identity.
type PlacementQueryServer struct {
	reader ApplicationReader
	log    *logrus.Logger
}

func NewPlacementQueryServer(reader ApplicationReader, log *logrus.Logger) *PlacementQueryServer {
	return &PlacementQueryServer{reader: reader, log: log}
}

func (s *PlacementQueryServer) GetApplication(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "application_id required")
	}
	if _, err := uuid.Parse(req.GetValue()); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid application_id")
	}
	app, err := s.reader.GetApplication(ctx, req.GetValue())
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, status.Error(codes.NotFound, "application not found")
		}
		s.log.WithError(err).Error("grpc application lookup failed")
		return nil, status.Error(codes.Internal, "application lookup failed")
	}
	out, err := structpb.NewStruct(applicationFields(app))
	if err != nil {
		return nil, status.Error(codes.Internal, "application encoding failed")
	}
	return out, nil
}

func (s *PlacementQueryServer) ListStudentApplications(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id required")
	}
	if _, err := uuid.Parse(req.GetValue()); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid user_id")
	}
	apps, err := s.reader.ListApplications(ctx, repository.ApplicationFilter{
		UserID: req.GetValue(),
		Page:   repository.Page{Limit: 200},
	})
	if err != nil {
		s.log.WithError(err).Error("grpc application list failed")
		return nil, status.Error(codes.Internal, "applications lookup failed")
	}
	items := make([]interface{}, 0, len(apps))
	for _, app := range apps {
		items = append(items, applicationFields(app))
	}
	out, err := structpb.NewStruct(map[string]interface{}{"applications": items})
	if err != nil {
		return nil, status.Error(codes.Internal, "applications encoding failed")
	}
	return out, nil
}

func applicationFields(app model.Application) map[string]interface{} {
	return map[string]interface{}{
		"id":          app.ID,
		"userId":      app.UserID,
		"jobOfferId":  app.JobOfferID,
		"status":      string(app.Status),
		"resumeUrl":   optional(app.ResumeURL),
		"appliedDate": app.AppliedDate.UTC().Format(time.RFC3339),
		"updatedAt":   app.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func optional(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
