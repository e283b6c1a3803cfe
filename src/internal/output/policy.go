// Package output decides which lines a classified host produces and writes
// them to the data stream.
package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/cdnsift/cdnsift/src/internal/errors"
)

// Template variables available in a configured output format.
const (
	TemplateVarHost = "host"
	TemplateVarPort = "port"
)

const (
	templateStartTag = "{{"
	templateEndTag   = "}}"
)

// cdnPorts are the fixed ports emitted for CDN hosts in append mode,
// regardless of the configured port list.
var cdnPorts = []uint16{80, 443}

// ParsePorts parses a comma-separated port list such as "80,443,8080".
// Order is preserved; duplicates are legal.
func ParsePorts(s string) ([]uint16, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New(errors.ErrCodeConfig, "empty port list")
	}

	parts := strings.Split(s, ",")
	ports := make([]uint16, 0, len(parts))
	for _, part := range parts {
		port, err := strconv.ParseUint(strings.TrimSpace(part), 10, 16)
		if err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("invalid port %q", part), err)
		}
		ports = append(ports, uint16(port))
	}
	return ports, nil
}

// ValidateFormat checks that format parses as a line template and references
// only known variables.
func ValidateFormat(format string) error {
	tmpl, err := fasttemplate.NewTemplate(format, templateStartTag, templateEndTag)
	if err != nil {
		return errors.NewValidationError("invalid output format", err)
	}

	var unknown []string
	seen := map[string]bool{}
	_ = tmpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if tag != TemplateVarHost && tag != TemplateVarPort && !seen[tag] {
			seen[tag] = true
			unknown = append(unknown, tag)
		}
		return 0, nil
	})
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("unknown output format variable(s): %s", strings.Join(unknown, ", ")))
	}
	return nil
}

// Policy is the deterministic decision table mapping a classified host to
// its emitted lines. It depends only on three inputs: whether explicit ports
// were given, whether the host resolved into a CDN range, and whether CDN
// hosts should be appended to the output.
type Policy struct {
	ports     []uint16
	appendCDN bool
	tmpl      *fasttemplate.Template
}

// NewPolicy builds a Policy. An empty format keeps the built-in "host" and
// "host:port" line shapes.
func NewPolicy(ports []uint16, appendCDN bool, format string) (*Policy, error) {
	p := &Policy{ports: ports, appendCDN: appendCDN}
	if format != "" {
		if err := ValidateFormat(format); err != nil {
			return nil, err
		}
		tmpl, err := fasttemplate.NewTemplate(format, templateStartTag, templateEndTag)
		if err != nil {
			return nil, errors.NewValidationError("invalid output format", err)
		}
		p.tmpl = tmpl
	}
	return p, nil
}

// Lines returns the output lines for one host, in emission order. A nil or
// empty result means the host is suppressed.
//
//	ports?  cdn?  append?  ->  output
//	 no      no     -          host
//	 no      yes    yes        host
//	 no      yes    no         nothing
//	 yes     no     -          host:port per configured port
//	 yes     yes    yes        host:80, host:443
//	 yes     yes    no         nothing
func (p *Policy) Lines(host string, isCDN bool) []string {
	if isCDN && !p.appendCDN {
		return nil
	}

	if len(p.ports) == 0 {
		return []string{p.render(host, "")}
	}

	ports := p.ports
	if isCDN {
		ports = cdnPorts
	}
	lines := make([]string, 0, len(ports))
	for _, port := range ports {
		lines = append(lines, p.render(host, strconv.Itoa(int(port))))
	}
	return lines
}

// render produces one output line. Without a template the line is the plain
// host, or host:port when a port applies.
func (p *Policy) render(host, port string) string {
	if p.tmpl == nil {
		if port == "" {
			return host
		}
		return host + ":" + port
	}
	return p.tmpl.ExecuteString(map[string]interface{}{
		TemplateVarHost: host,
		TemplateVarPort: port,
	})
}
