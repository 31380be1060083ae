package storage

import (
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/property-server/internal/storage/bankimport"
	"github.com/carson-networks/property-server/internal/storage/bill"
)

type Reader struct {
	Bills   bill.IReader
	Imports bankimport.IReader
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{
		Bills:   bill.NewReader(exec),
		Imports: bankimport.NewReader(exec),
	}
}
