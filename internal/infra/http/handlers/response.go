package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edicionpersuasiva/crm/internal/entity"
	"github.com/edicionpersuasiva/crm/internal/usecase"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

// newValidator reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type ErrorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message,omitempty"`
	Fields  []usecase.ValidationError `json:"fields,omitempty"`
}

var statusByCode = map[string]int{
	usecase.CodeValidation:          http.StatusBadRequest,
	usecase.CodeInvalidStatus:       http.StatusBadRequest,
	usecase.CodeCannotDeleteSelf:    http.StatusBadRequest,
	usecase.CodeLeadNotFound:        http.StatusNotFound,
	usecase.CodeSaleNotFound:        http.StatusNotFound,
	usecase.CodeUserNotFound:        http.StatusNotFound,
	usecase.CodeAdLinkNotFound:      http.StatusNotFound,
	usecase.CodePlanNotFound:        http.StatusNotFound,
	usecase.CodeInvalidTransition:   http.StatusConflict,
	usecase.CodeSaleLocked:          http.StatusConflict,
	usecase.CodeStatusConflict:      http.StatusConflict,
	usecase.CodeSaleAlreadyExists:   http.StatusConflict,
	usecase.CodeThresholdNotMet:     http.StatusConflict,
	usecase.CodeAccessAlreadyActive: http.StatusConflict,
	usecase.CodeAccessNotGranted:    http.StatusConflict,
	usecase.CodeEmailAlreadyExists:  http.StatusConflict,
	usecase.CodeSlugTaken:           http.StatusConflict,
	usecase.CodeInvalidCredentials:  http.StatusUnauthorized,
	usecase.CodeUserInactive:        http.StatusForbidden,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeUseCaseError maps a use case error to its HTTP status. Technical
// errors are logged and reported without internals.
func writeUseCaseError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if de, ok := usecase.AsDomainError(err); ok {
		status, known := statusByCode[de.Code]
		if !known {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, ErrorResponse{Error: de.Code, Message: de.Message, Fields: de.Fields})
		return
	}

	code := usecase.CodeDatabase
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		code = te.Code
	}
	logger.Error("request failed", zap.String("code", code), zap.Error(err))
	writeErrorResponse(w, http.StatusInternalServerError, code, "error interno, intenta de nuevo")
}

// decodeJSON reads a bounded JSON body into dst and runs struct validation.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeBody(w, r, dst, false)
}

// decodeOptionalJSON accepts an empty body, whatever its framing, and leaves
// dst zeroed.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeBody(w, r, dst, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]usecase.ValidationError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, usecase.ValidationError{Field: fe.Field(), Message: "falla la regla " + fe.Tag()})
			}
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: usecase.CodeValidation, Message: "datos inválidos", Fields: fields})
			return false
		}
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, err.Error())
		return false
	}
	return true
}

func actorEmail(u *entity.UserProfile) string {
	if u == nil {
		return ""
	}
	return u.Email
}

func actorUID(u *entity.UserProfile) string {
	if u == nil {
		return ""
	}
	return u.UID
}
