//go:build !windows

package docgen

import (
	"fmt"
	"runtime"
)

func (c *AutomationConverter) saveAsPDF(docxPath, pdfPath string) error {
	return fmt.Errorf("%s automation is not available on %s", c.progID(), runtime.GOOS)
}
