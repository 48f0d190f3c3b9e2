// ABOUTME: Startup registration of all in-process tools.
// ABOUTME: Called from the entrypoint before the HTTP listener binds.

package builtins

import (
	"github.com/2389/mcpd/internal/tools"
)

// Register adds every builtin tool to the registry. Registration order
// here is the order tools/list reports.
func Register(reg *tools.Registry) error {
	for _, d := range []*tools.Descriptor{
		DateTimeTool(),
		WikipediaTool(),
	} {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}
