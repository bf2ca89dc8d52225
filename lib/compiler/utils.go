package compiler

import (
	"fmt"
	"strings"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// valueFormat prints or scans one i64.
const valueFormat = "%ld"

// escapeFormat protects literal text from printf conversion.
func escapeFormat(text string) string {
	return strings.ReplaceAll(text, "%", "%%")
}

// formatString returns an i8* to a NUL terminated constant holding s. Equal
// strings share one global.
func (c *Compiler) formatString(s string) value.Value {
	g, ok := c.strings[s]
	if !ok {
		data := constant.NewCharArrayFromString(s + "\x00")
		g = c.Module.NewGlobalDef(fmt.Sprintf(".str.%d", len(c.strings)), data)
		g.Linkage = enum.LinkagePrivate
		g.UnnamedAddr = enum.UnnamedAddrUnnamedAddr
		g.Immutable = true
		c.strings[s] = g
	}
	zero := constant.NewInt(types.I64, 0)
	gep := constant.NewGetElementPtr(g.ContentType, g, zero, zero)
	gep.InBounds = true
	return gep
}
