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

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
	"github.com/icon-project/btp2/common/log"

	"github.com/icon-project/abi-scope/contract"
)

const (
	openapi3Version     = "3.0.3"
	infoTitlePrefix     = "ABI Scope "
	infoTitleSuffix     = " - OpenAPI " + openapi3Version
	infoDefaultVersion  = "0.1.0"
	schemaRefPrefix     = "#/components/schemas/"
	schemaErrorResponse = "ErrorResponse"
	schemaContractInfo  = "ContractInfo"
	schemaEncode        = "EncodeResponse"
	schemaCallData      = "CallDataResponse"
	schemaDecode        = "DecodeResponse"
	schemaConstructor   = "ConstructorResponse"
)

var (
	infoLicenseApache = &openapi3.License{
		Name: "Apache 2.0",
		URL:  "http://www.apache.org/licenses/LICENSE-2.0.html",
	}
	hexDataSchema = openapi3.NewStringSchema().WithPattern("^(0x)?([0-9a-fA-F][0-9a-fA-F])*$")
	addressSchema = openapi3.NewStringSchema().WithPattern("^(0x)?[0-9a-fA-F]{40}$")
	uintSchema    = openapi3.NewOneOfSchema(
		openapi3.NewStringSchema().WithPattern("^0x[0-9a-fA-F]+$"),
		openapi3.NewStringSchema().WithPattern("^[0-9]+$"),
		openapi3.NewIntegerSchema(),
	)
	intSchema = openapi3.NewOneOfSchema(
		openapi3.NewStringSchema().WithPattern("^-?0x[0-9a-fA-F]+$"),
		openapi3.NewStringSchema().WithPattern("^-?[0-9]+$"),
		openapi3.NewIntegerSchema(),
	)
	boolSchema = openapi3.NewOneOfSchema(
		openapi3.NewBoolSchema(),
		NewStringEnumSchema("true", "false"),
	)
	defaultSchemas = map[string]*openapi3.Schema{
		schemaErrorResponse: MustGenerateSchema(ErrorResponse{}),
		schemaContractInfo:  MustGenerateSchema(ContractInfo{}),
		schemaEncode:        MustGenerateSchema(EncodeResponse{}),
		schemaCallData:      MustGenerateSchema(CallDataResponse{}),
		schemaDecode:        MustGenerateSchema(DecodeResponse{}),
		schemaConstructor:   MustGenerateSchema(ConstructorResponse{}),
	}
	schemaNameReplacer = strings.NewReplacer("(", "_", ")", "", ",", "_", "[", "_", "]", "")
)

func MustGenerateSchema(v interface{}) *openapi3.Schema {
	ref, err := openapi3gen.NewSchemaRefForValue(v, nil)
	if err != nil {
		log.Panicf("%+v", err)
	}
	return ref.Value
}

func DefaultSchemaRef(name string) *openapi3.SchemaRef {
	if s, ok := defaultSchemas[name]; ok {
		return openapi3.NewSchemaRef(schemaRefPrefix+name, s)
	}
	return nil
}

func NewSchemas() openapi3.Schemas {
	schemas := make(openapi3.Schemas)
	for k, s := range defaultSchemas {
		schemas[k] = s.NewRef()
	}
	return schemas
}

func NewStringEnumSchema(strs ...string) *openapi3.Schema {
	values := make([]interface{}, len(strs))
	for i := 0; i < len(strs); i++ {
		values[i] = strs[i]
	}
	return openapi3.NewStringSchema().WithEnum(values...)
}

// TypeSpecToSchema returns the schema of the raw text accepted for s.
func TypeSpecToSchema(s contract.TypeSpec) *openapi3.Schema {
	switch s.TypeID {
	case contract.TAddress:
		return addressSchema
	case contract.TBool:
		return boolSchema
	case contract.TString:
		return openapi3.NewStringSchema()
	case contract.TUint:
		return uintSchema
	case contract.TInt:
		return intSchema
	case contract.TBytes:
		return hexDataSchema
	case contract.TFixedBytes:
		return openapi3.NewStringSchema().WithPattern(fmt.Sprintf("^(0x)?[0-9a-fA-F]{%d}$", s.Size*2))
	default:
		schema := openapi3.NewObjectSchema()
		schema.Description = "not supported type " + s.Name
		return schema
	}
}

func NewParamsSchema(params []contract.NameAndTypeSpec) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	required := make([]string, 0, len(params))
	for _, p := range params {
		ps := TypeSpecToSchema(p.Type)
		schema.WithProperty(p.Name, ps)
		required = append(required, p.Name)
	}
	schema.Required = required
	return schema
}

func NewSuccessResponseWithSchemaRef(sr *openapi3.SchemaRef) *openapi3.Response {
	return openapi3.NewResponse().WithDescription("Successful operation").WithJSONSchemaRef(sr)
}

func NewErrorResponse400() *openapi3.Response {
	return openapi3.NewResponse().WithDescription("Invalid input").
		WithJSONSchemaRef(DefaultSchemaRef(schemaErrorResponse))
}

func ResponsesWithResponse(m openapi3.Responses, status int, resp *openapi3.Response) openapi3.Responses {
	if m == nil {
		m = make(openapi3.Responses)
	}
	m[strconv.FormatInt(int64(status), 10)] = &openapi3.ResponseRef{
		Value: resp,
	}
	return m
}

func newResponses(name string) openapi3.Responses {
	m := ResponsesWithResponse(nil, http.StatusOK, NewSuccessResponseWithSchemaRef(DefaultSchemaRef(name)))
	return ResponsesWithResponse(m, http.StatusBadRequest, NewErrorResponse400())
}

func newPostPathItem(tag, summary string, req *openapi3.Schema, resp string) *openapi3.PathItem {
	return &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:    []string{tag},
			Summary: summary,
			RequestBody: &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().WithContent(
					openapi3.NewContentWithJSONSchema(req)),
			},
			Responses: newResponses(resp),
		},
	}
}

func NewOpenAPISpec(name string) openapi3.T {
	return openapi3.T{
		OpenAPI: openapi3Version,
		Info: &openapi3.Info{
			Title:   infoTitlePrefix + name + infoTitleSuffix,
			Version: infoDefaultVersion,
			License: infoLicenseApache,
		},
		Tags:  openapi3.Tags{&openapi3.Tag{Name: name, Description: fmt.Sprintf("%s Contract", name)}},
		Paths: make(openapi3.Paths),
		Components: &openapi3.Components{
			Schemas: NewSchemas(),
		},
	}
}

// NewContractOpenAPISpec documents the codec endpoints of the contract. Each
// function gets a request schema; the endpoints accept one of them.
func NewContractOpenAPISpec(name string, s *contract.Spec) openapi3.T {
	oas := NewOpenAPISpec(name)
	encodeReqs := make([]*openapi3.Schema, 0)
	decodeReqs := make([]*openapi3.Schema, 0)
	for _, fname := range s.FunctionNames() {
		l := s.Functions[fname]
		for i := range l {
			fn := &l[i]
			sig := fn.Signature()
			key := schemaNameReplacer.Replace(sig)
			oas.Components.Schemas[key] = NewParamsSchema(fn.Inputs).NewRef()
			req := openapi3.NewObjectSchema().
				WithProperty("function", NewStringEnumSchema(fname)).
				WithProperty("signature", NewStringEnumSchema(sig)).
				WithPropertyRef("params", openapi3.NewSchemaRef(schemaRefPrefix+key, oas.Components.Schemas[key].Value))
			req.Required = []string{"function", "params"}
			req.Title = sig
			encodeReqs = append(encodeReqs, req)

			dreq := openapi3.NewObjectSchema().
				WithProperty("function", NewStringEnumSchema(fname)).
				WithProperty("signature", NewStringEnumSchema(sig)).
				WithProperty("data", hexDataSchema)
			dreq.Required = []string{"function", "data"}
			dreq.Title = sig
			decodeReqs = append(decodeReqs, dreq)
		}
	}
	base := fmt.Sprintf("%s/%s", GroupUrlApi, name)
	oas.Paths[base+UrlEncode] = newPostPathItem(name, "Encode function inputs to tokens",
		openapi3.NewOneOfSchema(encodeReqs...), schemaEncode)
	oas.Paths[base+UrlCallData] = newPostPathItem(name, "Encode call data with selector",
		openapi3.NewOneOfSchema(encodeReqs...), schemaCallData)
	oas.Paths[base+UrlDecode] = newPostPathItem(name, "Decode returned data",
		openapi3.NewOneOfSchema(decodeReqs...), schemaDecode)
	dcreq := openapi3.NewObjectSchema().WithProperty("data", hexDataSchema)
	dcreq.Required = []string{"data"}
	oas.Paths[base+UrlDecodeCallData] = newPostPathItem(name, "Decode call data", dcreq, schemaDecode)
	if s.Constructor != nil {
		args := openapi3.NewArraySchema()
		args.Items = openapi3.NewStringSchema().NewRef()
		n := uint64(len(s.Constructor.Inputs))
		args.MinItems, args.MaxItems = n, &n
		oas.Paths[base+UrlConstructor] = newPostPathItem(name, "Encode constructor arguments",
			openapi3.NewObjectSchema().WithProperty("args", args), schemaConstructor)
	}
	oas.Paths[fmt.Sprintf("%s%s/%s", GroupUrlApi, UrlContracts, name)] = &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:      []string{name},
			Summary:   "Retrieve method identifiers",
			Responses: newResponses(schemaContractInfo),
		},
	}
	return oas
}

type OpenAPISpecProvider struct {
	c2d map[string]openapi3.T
	mtx sync.RWMutex
	l   log.Logger
}

func NewOpenAPISpecProvider(l log.Logger) *OpenAPISpecProvider {
	return &OpenAPISpecProvider{
		c2d: make(map[string]openapi3.T),
		l:   l,
	}
}

// GetOrMerge returns the document of the contract, building it from s if
// the contract was not merged, as for contracts restored from ContractStore.
func (o *OpenAPISpecProvider) GetOrMerge(name string, s *contract.Spec) openapi3.T {
	o.mtx.RLock()
	d, ok := o.c2d[name]
	o.mtx.RUnlock()
	if ok {
		return d
	}
	o.Merge(name, s)
	o.mtx.RLock()
	defer o.mtx.RUnlock()
	return o.c2d[name]
}

func (o *OpenAPISpecProvider) Merge(name string, s *contract.Spec) {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if _, ok := o.c2d[name]; ok {
		o.l.Debugf("replace OpenAPISpec contract:%s", name)
	}
	o.c2d[name] = NewContractOpenAPISpec(name, s)
}

func (o *OpenAPISpecProvider) Remove(name string) {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	delete(o.c2d, name)
}
