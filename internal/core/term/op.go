// Copyright 2024 The Lode Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package term

// A UnaryOp identifies a primitive operator of one operand.
type UnaryOp uint8

const (
	NoUnaryOp UnaryOp = iota

	// IteOp forces its condition to a Bool and reduces to a function
	// selecting the first or second of the next two arguments.
	// Conditionals and the boolean connectives compile to it; laziness
	// of the branches falls out of call-by-need application.
	IteOp

	// NotOp and NegOp are boolean and numeric negation.
	NotOp
	NegOp

	// BlameOp raises the contract violation described by its Label
	// operand.
	BlameOp

	// Shape tests. Each forces its operand and returns a Bool.
	IsNumOp
	IsBoolOp
	IsStrOp
	IsFunOp
	IsRecordOp
	IsListOp

	// List primitives.
	HeadOp
	TailOp
	LengthOp

	// FieldsOfOp returns the sorted field names of a record as a list
	// of strings.
	FieldsOfOp

	// EmbedOp wraps its operand in a default-priority meta-value, the
	// programmatic counterpart of a "| default" annotation.
	EmbedOp
)

var unaryOpStrings = map[UnaryOp]string{
	NoUnaryOp:  "noop",
	IteOp:      "ite",
	NotOp:      "!",
	NegOp:      "-",
	BlameOp:    "blame",
	IsNumOp:    "isnum",
	IsBoolOp:   "isbool",
	IsStrOp:    "isstr",
	IsFunOp:    "isfun",
	IsRecordOp: "isrecord",
	IsListOp:   "islist",
	HeadOp:     "head",
	TailOp:     "tail",
	LengthOp:   "length",
	FieldsOfOp: "fieldsof",
	EmbedOp:    "embed",
}

func (op UnaryOp) String() string { return unaryOpStrings[op] }

// A BinaryOp identifies a primitive operator of two operands.
type BinaryOp uint8

const (
	NoBinaryOp BinaryOp = iota

	// Arithmetic on numbers.
	AddOp
	SubOp
	MulOp
	DivOp

	// ConcatOp concatenates two strings or two lists.
	ConcatOp

	// Comparisons. Equality is structural and forces both operands
	// deeply; the orderings accept numbers and strings.
	EqOp
	NeqOp
	LssOp
	LeqOp
	GtrOp
	GeqOp

	// MergeOp combines two values under the merge semantics.
	MergeOp

	// SeqOp forces its first operand to weak head normal form and
	// returns the second; DeepSeqOp forces it recursively.
	SeqOp
	DeepSeqOp

	// List primitives.
	ElemAtOp
	MapOp

	// Record primitives. SelectOp is field access; its second operand
	// is the field name as a Str.
	HasFieldOp
	SelectOp

	// SealOp boxes its second operand under the sealing key given by
	// its first; UnsealOp opens a box sealed with the matching key and
	// blames the key's label otherwise.
	SealOp
	UnsealOp
)

var binaryOpStrings = map[BinaryOp]string{
	NoBinaryOp: "noop",
	AddOp:      "+",
	SubOp:      "-",
	MulOp:      "*",
	DivOp:      "/",
	ConcatOp:   "++",
	EqOp:       "==",
	NeqOp:      "!=",
	LssOp:      "<",
	LeqOp:      "<=",
	GtrOp:      ">",
	GeqOp:      ">=",
	MergeOp:    "&",
	SeqOp:      "seq",
	DeepSeqOp:  "deepseq",
	ElemAtOp:   "elemat",
	MapOp:      "map",
	HasFieldOp: "hasfield",
	SelectOp:   ".",
	SealOp:     "seal",
	UnsealOp:   "unseal",
}

func (op BinaryOp) String() string { return binaryOpStrings[op] }
