// Package responses writes the JSON envelopes every route returns:
// {"data": ...} on success and {"error", "code", "details"} on failure.
package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/logger"
	"github.com/bikurim/procurement-backend/pkg/types"
)

const contentTypeJSON = "application/json; charset=utf-8"

// encodeFailure is sent when a payload cannot be marshalled.
var encodeFailure = []byte(`{"error":"internal server error","code":"INTERNAL_ERROR"}` + "\n")

func WriteSuccess(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, types.SuccessEnvelope{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) {
	write(w, http.StatusCreated, types.SuccessEnvelope{Data: data})
}

// WriteError renders err as an error envelope and logs it: 5xx at error
// level, everything else as a rejected request. Errors without a code are
// internal and their text never reaches the client.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("error response without an error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unclassified error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	body := types.ErrorEnvelope{Error: publicMessage(typed, meta), Code: string(typed.Code())}
	if meta.DetailsAllowed {
		body.Details = typed.Details()
	}

	logError(ctx, logg, err, meta.HTTPStatus)
	write(w, meta.HTTPStatus, body)
}

func publicMessage(e *pkgerrors.Error, meta pkgerrors.Metadata) string {
	if e.Code() == pkgerrors.CodeInternal || e.Message() == "" {
		return meta.PublicMessage
	}
	return e.Message()
}

func logError(ctx context.Context, logg *logger.Logger, err error, status int) {
	if logg == nil {
		return
	}
	dump := pkgerrors.Dump(err)
	fields := map[string]any{
		"http_status": status,
		"error_code":  dump.Code,
		"error_chain": dump.Chain,
	}
	if dump.PGCode != "" {
		fields["pg_code"] = dump.PGCode
		fields["pg_constraint"] = dump.PGConstraint
		fields["pg_table"] = dump.PGTable
		fields["pg_detail"] = dump.PGDetail
	}
	ctx = logg.WithFields(ctx, fields)
	if status >= http.StatusInternalServerError {
		logg.Error(ctx, "request.error", err)
		return
	}
	logg.Warn(logg.WithField(ctx, "error", dump.TopMessage), "request.rejected")
}

// write marshals before touching the header so an unencodable payload still
// yields a well-formed 500.
func write(w http.ResponseWriter, status int, payload any) {
	buf, err := json.Marshal(payload)
	if err != nil {
		status, buf = http.StatusInternalServerError, encodeFailure
	} else {
		buf = append(buf, '\n')
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}
