/*
 * Copyright 2023 ICON Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package contract

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/icon-project/btp2/common/log"
	"golang.org/x/crypto/sha3"
)

type TypeTag int64

const (
	TUnsupported TypeTag = iota
	TAddress
	TBool
	TString
	TUint
	TInt
	TBytes
	TFixedBytes
)

const (
	WordBits     = 256
	WordBytes    = WordBits / 8
	SelectorSize = 4
)

var (
	specLogger = log.New()
)

func init() {
	specLogger.SetLevel(log.DebugLevel)
}

func (t TypeTag) String() string {
	if int(t) < len(typeIdToNames) {
		return typeIdToNames[t]
	}
	return typeIdToNames[TUnsupported]
}

var (
	typeIdToNames = []string{"Unsupported", "Address", "Bool", "String", "Uint", "Int", "Bytes", "FixedBytes"}

	uintTypeRegexp       = regexp.MustCompile(`^uint(\d*)$`)
	intTypeRegexp        = regexp.MustCompile(`^int(\d*)$`)
	fixedBytesTypeRegexp = regexp.MustCompile(`^bytes(\d+)$`)
)

// TypeSpec is a primitive parameter type. Size is the bit width for TUint and
// TInt, and the byte length for TFixedBytes.
type TypeSpec struct {
	Name   string
	TypeID TypeTag
	Size   int
}

func ParseTypeSpec(name string) TypeSpec {
	s := TypeSpec{Name: name}
	switch {
	case name == "address":
		s.TypeID = TAddress
	case name == "bool":
		s.TypeID = TBool
	case name == "string":
		s.TypeID = TString
	case name == "bytes":
		s.TypeID = TBytes
	case uintTypeRegexp.MatchString(name):
		s.TypeID, s.Size = numericTypeOf(TUint, uintTypeRegexp.FindStringSubmatch(name)[1])
	case intTypeRegexp.MatchString(name):
		s.TypeID, s.Size = numericTypeOf(TInt, intTypeRegexp.FindStringSubmatch(name)[1])
	case fixedBytesTypeRegexp.MatchString(name):
		size := fixedBytesTypeRegexp.FindStringSubmatch(name)[1]
		n, err := strconv.Atoi(size)
		if err == nil && size[0] != '0' && n > 0 && n <= WordBytes {
			s.TypeID, s.Size = TFixedBytes, n
		}
	}
	specLogger.Tracef("TypeSpec parse name:%s type:%s size:%d\n", name, s.TypeID, s.Size)
	return s
}

func numericTypeOf(t TypeTag, bits string) (TypeTag, int) {
	if bits == "" {
		return t, WordBits
	}
	n, err := strconv.Atoi(bits)
	if err != nil || bits[0] == '0' || n <= 0 || n > WordBits || n%8 != 0 {
		return TUnsupported, 0
	}
	return t, n
}

func NewTypeSpec(t TypeTag, size int) TypeSpec {
	s := TypeSpec{TypeID: t, Size: size}
	s.Name = s.Canonical()
	return s
}

// Canonical returns the type name used in function signatures.
func (s TypeSpec) Canonical() string {
	switch s.TypeID {
	case TAddress:
		return "address"
	case TBool:
		return "bool"
	case TString:
		return "string"
	case TBytes:
		return "bytes"
	case TUint:
		return fmt.Sprintf("uint%d", s.Size)
	case TInt:
		return fmt.Sprintf("int%d", s.Size)
	case TFixedBytes:
		return fmt.Sprintf("bytes%d", s.Size)
	default:
		return s.Name
	}
}

func (s TypeSpec) IsDynamic() bool {
	return s.TypeID == TString || s.TypeID == TBytes
}

func (s TypeSpec) IsSupported() bool {
	return s.TypeID != TUnsupported
}

func (s TypeSpec) String() string {
	return s.Canonical()
}

// MarshalJSON implements json.Marshaler interface.
func (s TypeSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Name)
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *TypeSpec) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*s = ParseTypeSpec(name)
	return nil
}

type NameAndTypeSpec struct {
	Name string   `json:"name"`
	Type TypeSpec `json:"type"`
}

type FunctionSpec struct {
	Name            string            `json:"name"`
	Inputs          []NameAndTypeSpec `json:"inputs"`
	Outputs         []NameAndTypeSpec `json:"outputs,omitempty"`
	StateMutability string            `json:"stateMutability,omitempty"`
}

func (s *FunctionSpec) Types() []string {
	types := make([]string, len(s.Inputs))
	for i, v := range s.Inputs {
		types[i] = v.Type.Canonical()
	}
	return types
}

// Signature returns the canonical signature, e.g. "transfer(address,uint256)".
func (s *FunctionSpec) Signature() string {
	return fmt.Sprintf("%s(%s)", s.Name, strings.Join(s.Types(), ","))
}

// Selector returns the first 4 bytes of the Keccak-256 hash of Signature.
func (s *FunctionSpec) Selector() []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(s.Signature()))
	return h.Sum(nil)[:SelectorSize]
}

func (s *FunctionSpec) ReadOnly() bool {
	return s.StateMutability == "view" || s.StateMutability == "pure"
}

// MatchSignature reports whether sig is either the canonical signature or
// the comma separated parameter type list.
func (s *FunctionSpec) MatchSignature(sig string) bool {
	sig = strings.ReplaceAll(sig, " ", "")
	if i := strings.IndexByte(sig, '('); i >= 0 {
		if (i > 0 && sig[:i] != s.Name) || !strings.HasSuffix(sig, ")") {
			return false
		}
		sig = sig[i+1 : len(sig)-1]
	}
	types := strings.Split(sig, ",")
	if sig == "" {
		types = nil
	}
	if len(types) != len(s.Inputs) {
		return false
	}
	for i, t := range types {
		if ParseTypeSpec(t).Canonical() != s.Inputs[i].Type.Canonical() {
			return false
		}
	}
	return true
}

type Spec struct {
	Name        string                    `json:"name,omitempty"`
	Constructor *FunctionSpec             `json:"constructor,omitempty"`
	Functions   map[string][]FunctionSpec `json:"functions"`
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *Spec) UnmarshalJSON(data []byte) error {
	type tSpec Spec
	if err := json.Unmarshal(data, (*tSpec)(s)); err != nil {
		return err
	}
	if s.Functions == nil {
		s.Functions = make(map[string][]FunctionSpec)
	}
	for name, l := range s.Functions {
		for i := range l {
			if len(l[i].Name) == 0 {
				l[i].Name = name
			} else if l[i].Name != name {
				return ErrorCodeInvalidSpec.Errorf("mismatch function name key:%s name:%s", name, l[i].Name)
			}
			specLogger.Tracef("FunctionSpec resolve signature:%s\n", l[i].Signature())
		}
	}
	return nil
}

func (s *Spec) AddFunction(f FunctionSpec) {
	if s.Functions == nil {
		s.Functions = make(map[string][]FunctionSpec)
	}
	s.Functions[f.Name] = append(s.Functions[f.Name], f)
}

func (s *Spec) FunctionNames() []string {
	names := make([]string, 0, len(s.Functions))
	for name := range s.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Function resolves a function by name. When the name is overloaded, signature
// selects one of the candidates; see FunctionSpec.MatchSignature.
func (s *Spec) Function(name, signature string) (*FunctionSpec, error) {
	l := s.Functions[name]
	if len(l) == 0 {
		return nil, ErrorCodeSchemaNotFound.Errorf("not found function:%s", name)
	}
	if len(signature) == 0 {
		if len(l) > 1 {
			sigs := make([]string, len(l))
			for i := range l {
				sigs[i] = l[i].Signature()
			}
			return nil, ErrorCodeAmbiguousOverload.Errorf("ambiguous function:%s candidates:[%s]",
				name, strings.Join(sigs, " "))
		}
		return &l[0], nil
	}
	for i := range l {
		if l[i].MatchSignature(signature) {
			return &l[i], nil
		}
	}
	return nil, ErrorCodeSchemaNotFound.Errorf("not found function:%s signature:%s", name, signature)
}

func (s *Spec) FunctionBySelector(selector []byte) (*FunctionSpec, error) {
	if len(selector) < SelectorSize {
		return nil, ErrorCodeTruncatedData.Errorf("too short selector len:%d", len(selector))
	}
	for _, name := range s.FunctionNames() {
		l := s.Functions[name]
		for i := range l {
			if bytes.Equal(l[i].Selector(), selector[:SelectorSize]) {
				return &l[i], nil
			}
		}
	}
	return nil, ErrorCodeSchemaNotFound.Errorf("not found function selector:0x%x", selector[:SelectorSize])
}

// MethodIdentifiers maps each signature to its hex encoded selector.
func (s *Spec) MethodIdentifiers() map[string]string {
	ret := make(map[string]string)
	for _, name := range s.FunctionNames() {
		l := s.Functions[name]
		for i := range l {
			ret[l[i].Signature()] = hex.EncodeToString(l[i].Selector())
		}
	}
	return ret
}

func (s *Spec) Signatures() []string {
	sigs := make([]string, 0)
	for _, name := range s.FunctionNames() {
		for i := range s.Functions[name] {
			sigs = append(sigs, s.Functions[name][i].Signature())
		}
	}
	return sigs
}
