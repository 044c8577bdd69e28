package output

import (
	"fmt"
	"strings"

	"github.com/waftester/wafcharset/internal/hexutil"
	"github.com/waftester/wafcharset/pkg/fuzz"
	"github.com/waftester/wafcharset/pkg/results"
)

// EncodedRequest renders the single-encode view of v: the full request as
// Latin-1 text, a hex dump of the full request and the body as hex.
func EncodedRequest(v fuzz.Variant) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Encoded Request (%s) ===\n\n", v.Spec.Name)
	sb.WriteString(hexutil.Latin1(v.FullRequest))
	sb.WriteString("\n\n=== Request Hex ===\n")
	sb.WriteString(hexutil.Dump(v.FullRequest))
	sb.WriteString("\n=== Body Hex ===\n")
	sb.WriteString(hexutil.Encode(v.Body))
	sb.WriteString("\n")
	return sb.String()
}

// Detail renders everything known about one result. Status, response
// length and response time are shown only once a status was read.
func Detail(r results.Result) string {
	v := r.Variant
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Fuzz #%d - %s ===\n\n", r.Index, v.Spec.Name)
	fmt.Fprintf(&sb, "Content-Type: %s\n", v.ContentType)
	fmt.Fprintf(&sb, "Request Length: %d bytes\n", v.RequestLength())
	fmt.Fprintf(&sb, "State: %s\n", r.State)
	if r.StatusCode > 0 {
		fmt.Fprintf(&sb, "Status Code: %d\n", r.StatusCode)
		fmt.Fprintf(&sb, "Response Length: %d bytes\n", r.ResponseLength)
		fmt.Fprintf(&sb, "Response Time: %d ms\n", r.ElapsedMS())
	}
	if r.Error != "" {
		fmt.Fprintf(&sb, "Error: %s\n", r.Error)
	}
	if r.Diverges {
		sb.WriteString("Diverges from baseline: yes\n")
	}

	sb.WriteString("\n=== Request Content ===\n\n")
	sb.WriteString(hexutil.Latin1(v.FullRequest))

	if len(r.Response) > 0 {
		fmt.Fprintf(&sb, "\n\n=== Response Content (%d bytes) ===\n\n", len(r.Response))
		sb.WriteString(hexutil.Latin1(r.Response))
	}
	sb.WriteString("\n")
	return sb.String()
}
