// Package xsdedit provides the document core for schema editors: a
// typed node tree for XML Schema constructs, a parser and serializer
// that round-trip schema text, reversible edit commands with undo and
// redo, change notification, and a reparse-avoiding document cache.
//
// The tree is mutated only through commands executed on a Document or
// History, which keeps every edit undoable and keeps observers
// informed. Direct field access on nodes is read-only by construction.
package xsdedit
