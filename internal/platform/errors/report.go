package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// Report renders err for an operator the way a gRPC client would see it: the
// localized message, the domain reason with its gRPC code, the error metadata,
// then the internal message when it adds anything. Errors without a domain
// code render as their plain text.
func Report(err error, locale string) string {
	if err == nil {
		return ""
	}
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		return err.Error()
	}
	st, ok := status.FromError(domainErr.ToGRPCStatus(locale, ""))
	if !ok {
		return err.Error()
	}

	message := st.Message()
	reason := string(domainErr.Code)
	var metadata []string
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.LocalizedMessage:
			message = d.GetMessage()
		case *errdetails.ErrorInfo:
			reason = d.GetReason()
			for key, value := range d.GetMetadata() {
				metadata = append(metadata, key+"="+value)
			}
		}
	}
	sort.Strings(metadata)

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s %s]", message, reason, st.Code())
	if len(metadata) > 0 {
		b.WriteString(" " + strings.Join(metadata, " "))
	}
	if detail := err.Error(); detail != message {
		b.WriteString(": " + detail)
	}
	return b.String()
}
