package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/inngest/rpcvalidate/pkg/errdetail"
	"github.com/inngest/rpcvalidate/pkg/reason"
	"github.com/inngest/rpcvalidate/pkg/userv1"
)

// messageLevel is shown in place of an empty field path.
const messageLevel = "(message)"

// TextFieldViolations lists field violations, one block per entry.
func TextFieldViolations(w io.Writer, fvs []errdetail.FieldViolation) error {
	if len(fvs) == 0 {
		_, err := fmt.Fprintln(w, FeintStyle.Render("no field violations"))
		return err
	}

	tw := NewTextWriterTo(w)
	if err := tw.WriteOrdered(OrderedData("Violations", len(fvs))); err != nil {
		return err
	}

	for i, fv := range fvs {
		field := fv.Field
		if field == "" {
			field = messageLevel
		}

		data := OrderedData(
			"Field", field,
			"Description", fv.Description,
			"Reason", fv.Reason,
		)
		if fv.Reason != "" && !fv.HasValidReason() {
			data.Set("Warning", RenderWarning("malformed reason code"))
		}

		block := OrderedData(fmt.Sprintf("#%d", i+1), data)
		if err := tw.WriteOrdered(block, WithTextOptLeadSpace(true)); err != nil {
			return err
		}
	}

	return tw.Flush()
}

// TextReasonCodes lists rule ids next to their reason codes.
func TextReasonCodes(w io.Writer, ruleIDs []string) error {
	tw := NewTextWriterTo(w)
	for _, id := range ruleIDs {
		code := reason.ToReasonCode(id)

		status := OKStyle.Render("ok")
		switch {
		case !reason.IsValid(code):
			status = ErrorStyle.Render("invalid")
		case !reason.Conforms(code):
			status = WarnStyle.Render(fmt.Sprintf("longer than %d", reason.MaxLength))
		}

		if err := tw.WriteOrdered(OrderedData(id, fmt.Sprintf("%s\t%s", code, status))); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// TextUser describes a created user.
func TextUser(w io.Writer, u userv1.User) error {
	tw := NewTextWriterTo(w)
	if err := tw.WriteOrdered(OrderedData(
		"ID", u.ID,
		"Name", u.Name,
		"Email", u.Email,
		"Created At", u.CreatedAt,
		"Updated At", u.UpdatedAt,
	)); err != nil {
		return err
	}
	return tw.Flush()
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
