package grpc

import (
	"context"
	"sort"
	"time"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/service"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/validate"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type Handler struct {
	svc service.Service
	log *zap.Logger
}

func NewHandler(svc service.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		svc: svc,
		log: log,
	}
}

func (h *Handler) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := h.svc.Register(ctx, validate.RegisterInput{
		Username:        stringField(req, "username"),
		Email:           stringField(req, "email"),
		Password:        stringField(req, "password"),
		ConfirmPassword: stringField(req, "confirmPassword"),
	})
	if err != nil {
		return nil, h.mapError("Register", err)
	}

	return structpb.NewStruct(accountFields(account))
}

func (h *Handler) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := h.svc.Login(ctx, validate.LoginInput{
		Username: stringField(req, "username"),
		Password: stringField(req, "password"),
	})
	if err != nil {
		return nil, h.mapError("Login", err)
	}

	fields := accountFields(sess.Account)
	fields["token"] = sess.Token
	fields["expiresAt"] = sess.ExpiresAt.UTC().Format(time.RFC3339)
	return structpb.NewStruct(fields)
}

func (h *Handler) ListUsers(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	accounts, err := h.svc.ListOthers(ctx, authorization(ctx))
	if err != nil {
		return nil, h.mapError("ListUsers", err)
	}

	users := make([]interface{}, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, accountFields(a))
	}
	return structpb.NewStruct(map[string]interface{}{"users": users})
}

// accountFields is the public projection of an account; the digest never leaves the service.
func accountFields(a model.Account) map[string]interface{} {
	return map[string]interface{}{
		"id":        a.ID.String(),
		"username":  a.Username,
		"email":     a.Email,
		"createdAt": a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func stringField(s *structpb.Struct, name string) string {
	v, ok := s.GetFields()[name]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

func authorization(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get("authorization"); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func (h *Handler) mapError(method string, err error) error {
	if uie, ok := customErrors.AsUserInput(err); ok {
		return userInputStatus(uie)
	}
	if customErrors.IsUnauthenticated(err) {
		return status.Error(codes.Unauthenticated, "Unauthenticated")
	}
	h.log.Error("gRPC call failed", zap.String("method", method), zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}

func userInputStatus(uie *customErrors.UserInputError) error {
	st := status.New(codes.InvalidArgument, uie.Message)

	fields := make([]string, 0, len(uie.Errors))
	for f := range uie.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	br := &errdetails.BadRequest{}
	for _, f := range fields {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       f,
			Description: uie.Errors[f],
		})
	}

	detailed, err := st.WithDetails(br)
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// FieldErrorsFromStatus recovers the field map from an InvalidArgument status.
func FieldErrorsFromStatus(err error) customErrors.FieldErrors {
	out := customErrors.FieldErrors{}
	st, ok := status.FromError(err)
	if !ok {
		return out
	}
	for _, d := range st.Details() {
		br, ok := d.(*errdetails.BadRequest)
		if !ok {
			continue
		}
		for _, v := range br.GetFieldViolations() {
			out[v.GetField()] = v.GetDescription()
		}
	}
	return out
}
