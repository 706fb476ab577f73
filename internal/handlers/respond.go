package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	apierrors "github.com/Wahidu1/projects-tech-foring/internal/errors"
	"github.com/Wahidu1/projects-tech-foring/internal/middleware"
	"github.com/Wahidu1/projects-tech-foring/internal/policy"
	"github.com/Wahidu1/projects-tech-foring/internal/services"
	"github.com/Wahidu1/projects-tech-foring/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// report binding failures under their JSON names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	}
}

// respondError maps service errors to API errors in one place. Unexpected
// errors are attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError

	switch {
	case errors.As(err, &verr):
		apierrors.ValidationError(c, "Invalid request", verr.Fields)
	case errors.Is(err, services.ErrValidation):
		apierrors.ValidationError(c, err.Error(), nil)
	case errors.Is(err, policy.ErrOwnerChangeNotAllowed):
		apierrors.ValidationError(c, "Invalid request", map[string]string{"owner": err.Error()})
	case errors.Is(err, services.ErrDuplicateIdentity):
		apierrors.DuplicateIdentity(c, "")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrExpiredToken):
		apierrors.ExpiredToken(c)
	case errors.Is(err, services.ErrInvalidToken):
		apierrors.InvalidToken(c)
	case errors.Is(err, services.ErrUnauthenticated):
		apierrors.Unauthenticated(c, "")
	case errors.Is(err, policy.ErrPermissionDenied):
		apierrors.PermissionDenied(c, "")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrMemberNotFound):
		apierrors.NotFound(c, "Project member not found")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrCommentNotFound):
		apierrors.NotFound(c, "Comment not found")
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAINoTasksGenerated):
		apierrors.ValidationError(c, err.Error(), nil)
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}

// bindJSON decodes the request body into req and answers 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = validationMessage(fe)
		}
		apierrors.ValidationError(c, "Invalid request body", details)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		apierrors.ValidationError(c, "Invalid request body", map[string]string{typeErr.Field: "has the wrong type"})
	case errors.Is(err, io.EOF):
		apierrors.ValidationError(c, "Request body is required", nil)
	default:
		apierrors.ValidationError(c, "Invalid request body", nil)
	}
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

// currentIdentity returns the caller stored by RequireAuth, answering 401
// when it is missing.
func currentIdentity(c *gin.Context) (policy.Identity, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthenticated(c, "")
		return policy.Identity{}, false
	}
	return identity, true
}

// idParam parses a positive numeric path parameter, answering 404 when it
// does not resolve.
func idParam(c *gin.Context, name string) (uint64, bool) {
	id, ok := utils.ParseIDParam(c, name)
	if !ok {
		apierrors.NotFound(c, "")
		return 0, false
	}
	return id, true
}

// isFullUpdate reports whether the request replaces every required field.
func isFullUpdate(c *gin.Context) bool {
	return c.Request.Method == http.MethodPut
}

// nullableID tells an absent JSON field apart from an explicit null.
type nullableID struct {
	Set   bool
	Value *uint64
}

func (n *nullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}

	var v uint64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}
