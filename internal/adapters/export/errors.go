package export

import "errors"

// ErrWorkbook is returned when the workbook cannot be built or written.
var ErrWorkbook = errors.New("export: workbook")
