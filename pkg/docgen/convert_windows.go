//go:build windows

package docgen

import (
	"errors"
	"fmt"
	"runtime"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// sFalse is returned by CoInitializeEx when the thread is already initialized
const sFalse = 0x1

func (c *AutomationConverter) saveAsPDF(docxPath, pdfPath string) error {
	// COM apartments are per thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			return fmt.Errorf("initialize com: %w", err)
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject(c.progID())
	if err != nil {
		return fmt.Errorf("create %s: %w", c.progID(), err)
	}
	defer unknown.Release()

	word, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("query dispatch: %w", err)
	}
	defer word.Release()
	defer oleutil.CallMethod(word, "Quit") //nolint:errcheck

	if _, err := oleutil.PutProperty(word, "Visible", false); err != nil {
		return fmt.Errorf("hide application: %w", err)
	}

	documentsVar, err := oleutil.GetProperty(word, "Documents")
	if err != nil {
		return fmt.Errorf("get documents: %w", err)
	}
	documents := documentsVar.ToIDispatch()
	defer documents.Release()

	// Open(FileName, ConfirmConversions, ReadOnly)
	docVar, err := oleutil.CallMethod(documents, "Open", docxPath, false, true)
	if err != nil {
		return fmt.Errorf("open %s: %w", docxPath, err)
	}
	doc := docVar.ToIDispatch()
	defer doc.Release()
	defer oleutil.CallMethod(doc, "Close", false) //nolint:errcheck

	if _, err := oleutil.CallMethod(doc, "SaveAs", pdfPath, wdFormatPDF); err != nil {
		return fmt.Errorf("save %s: %w", pdfPath, err)
	}
	return nil
}
