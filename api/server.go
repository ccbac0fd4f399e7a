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
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/icon-project/btp2/common/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/icon-project/abi-scope/contract"
	"github.com/icon-project/abi-scope/contract/eth"
)

const (
	ParamContract         = "contract"
	GroupUrlApi           = "/api"
	GroupUrlMonitor       = "/monitor"
	UrlContracts          = "/contracts"
	UrlOpenAPI            = "/openapi"
	UrlEncode             = "/encode"
	UrlCallData           = "/calldata"
	UrlDecode             = "/decode"
	UrlDecodeCallData     = "/decodeCallData"
	UrlConstructor        = "/constructor"
	UrlBridge             = "/bridge"
	WsHandshakeTimeout    = time.Second * 3
	ServerShutdownTimeout = time.Second
)

func Logger(l log.Logger) log.Logger {
	return l.WithFields(log.Fields{log.FieldKeyModule: "api"})
}

type Server struct {
	e    *echo.Echo
	addr string
	r    *Registry
	o    *OpenAPISpecProvider
	u    websocket.Upgrader
	lv   log.Level
	l    log.Logger
}

func NewServer(addr string, r *Registry, transportLogLevel log.Level, l log.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = HttpErrorHandler
	l = Logger(l)
	s := &Server{
		e:    e,
		addr: addr,
		r:    r,
		o:    NewOpenAPISpecProvider(l),
		lv:   EnsureTransportLogLevel(transportLogLevel),
		l:    l,
	}
	e.Use(
		middleware.CORSWithConfig(middleware.CORSConfig{
			MaxAge: 3600,
		}),
		middleware.Recover())
	s.RegisterAPIHandler(e.Group(GroupUrlApi))
	s.RegisterMonitorHandler(e.Group(GroupUrlMonitor))
	return s
}

func (s *Server) Registry() *Registry {
	return s.r
}

// Register adds the contract to the registry and its OpenAPI document.
func (s *Server) Register(name, format string, spec []byte) (*ContractInfo, error) {
	return s.register(name, &SpecRequest{Format: format, Spec: spec})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

func (s *Server) Start() error {
	s.l.Infoln("starting the server", s.addr)
	return s.e.Start(s.addr)
}

func (s *Server) Stop() error {
	s.l.Infoln("shutting down the server")

	ctx, cancel := context.WithTimeout(context.Background(), ServerShutdownTimeout)
	defer cancel()
	return s.e.Shutdown(ctx)
}

type SpecRequest struct {
	Format string          `json:"format,omitempty" validate:"omitempty,specformat"`
	Spec   json.RawMessage `json:"spec,omitempty"`
}

type RegisterRequest struct {
	Name string `json:"name" validate:"required"`
	SpecRequest
}

type ContractInfo struct {
	Name              string            `json:"name"`
	Constructor       []string          `json:"constructor,omitempty"`
	MethodIdentifiers map[string]string `json:"methodIdentifiers"`
}

type EncodeRequest struct {
	SpecRequest
	Function  string          `json:"function" validate:"required"`
	Signature string          `json:"signature,omitempty"`
	Params    contract.Params `json:"params"`
}

type EncodeResponse struct {
	Function string           `json:"function"`
	Selector string           `json:"selector"`
	Values   []eth.NamedValue `json:"values"`
}

type CallDataResponse struct {
	Function string `json:"function"`
	Data     string `json:"data"`
}

type DecodeRequest struct {
	SpecRequest
	Function  string `json:"function" validate:"required"`
	Signature string `json:"signature,omitempty"`
	Data      string `json:"data" validate:"hexdata"`
}

type DecodeCallDataRequest struct {
	SpecRequest
	Data string `json:"data" validate:"required,hexdata"`
}

type DecodeResponse struct {
	Function string           `json:"function"`
	Values   []eth.NamedValue `json:"values"`
}

type ConstructorRequest struct {
	SpecRequest
	Args []string `json:"args"`
}

type ConstructorResponse struct {
	Data string `json:"data"`
}

func (s *Server) contractInfo(name string, c *eth.Codec) *ContractInfo {
	info := &ContractInfo{
		Name:              name,
		MethodIdentifiers: c.MethodIdentifiers(),
	}
	if ctor := c.Spec().Constructor; ctor != nil {
		info.Constructor = ctor.Types()
	}
	return info
}

func (s *Server) register(name string, req *SpecRequest) (*ContractInfo, error) {
	if len(req.Spec) == 0 {
		return nil, contract.ErrorCodeInvalidSpec.Errorf("empty spec contract:%s", name)
	}
	c, err := s.r.Register(name, req.Format, req.Spec)
	if err != nil {
		s.l.Debugf("fail to Register contract:%s err:%+v", name, err)
		return nil, err
	}
	s.o.Merge(name, c.Spec())
	return s.contractInfo(name, c), nil
}

// codec registers the inline spec of req if present, or returns the codec
// registered under name.
func (s *Server) codec(name string, req *SpecRequest) (*eth.Codec, error) {
	if len(req.Spec) > 0 {
		if _, err := s.register(name, req); err != nil {
			return nil, err
		}
	}
	c := s.r.Get(name)
	if c == nil {
		return nil, contract.ErrorCodeSchemaNotFound.Errorf("not found contract:%s", name)
	}
	return c, nil
}

func (s *Server) encode(c *eth.Codec, req *EncodeRequest) (*EncodeResponse, error) {
	fn, tokens, err := c.Encode(req.Function, req.Signature, req.Params)
	if err != nil {
		return nil, err
	}
	return &EncodeResponse{
		Function: fn.Signature(),
		Selector: hex.EncodeToString(fn.Selector()),
		Values:   eth.NamedValues(fn.Inputs, tokens),
	}, nil
}

func (s *Server) callData(c *eth.Codec, req *EncodeRequest) (*CallDataResponse, error) {
	fn, err := c.Spec().Function(req.Function, req.Signature)
	if err != nil {
		return nil, err
	}
	data, err := c.CallData(req.Function, fn.Signature(), req.Params)
	if err != nil {
		return nil, err
	}
	return &CallDataResponse{Function: fn.Signature(), Data: data}, nil
}

func (s *Server) decode(c *eth.Codec, req *DecodeRequest) (*DecodeResponse, error) {
	b, err := eth.DecodeHex(req.Data)
	if err != nil {
		return nil, err
	}
	fn, tokens, err := c.Decode(req.Function, req.Signature, b)
	if err != nil {
		return nil, err
	}
	return &DecodeResponse{Function: fn.Signature(), Values: eth.NamedValues(fn.Outputs, tokens)}, nil
}

func (s *Server) decodeCallData(c *eth.Codec, req *DecodeCallDataRequest) (*DecodeResponse, error) {
	b, err := eth.DecodeHex(req.Data)
	if err != nil {
		return nil, err
	}
	fn, tokens, err := c.DecodeCallData(b)
	if err != nil {
		return nil, err
	}
	return &DecodeResponse{Function: fn.Signature(), Values: eth.NamedValues(fn.Inputs, tokens)}, nil
}

func (s *Server) constructor(c *eth.Codec, req *ConstructorRequest) (*ConstructorResponse, error) {
	data, err := c.EncodeConstructor(req.Args)
	if err != nil {
		return nil, err
	}
	return &ConstructorResponse{Data: data}, nil
}

// bind unmarshals the body into req and validates it.
func bind(c echo.Context, req interface{}) error {
	if err := UnmarshalRequestBody(c, req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.Validate(req)
}

func contractHandler[T any, R any](s *Server, op string, spec func(*T) *SpecRequest, f func(*eth.Codec, *T) (R, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(T)
		if err := bind(c, req); err != nil {
			s.l.Debugf("fail to bind op:%s err:%+v", op, err)
			return err
		}
		codec, err := s.codec(c.Param(ParamContract), spec(req))
		if err != nil {
			return err
		}
		ret, err := f(codec, req)
		if err != nil {
			s.l.Debugf("fail to %s err:%+v", op, err)
			return err
		}
		return c.JSON(http.StatusOK, ret)
	}
}

func (s *Server) RegisterAPIHandler(g *echo.Group) {
	g.Use(middleware.BodyDump(func(c echo.Context, reqBody []byte, resBody []byte) {
		s.l.Debugf("url=%s", c.Request().RequestURI)
		s.l.Logf(s.lv, "request=%s", reqBody)
		s.l.Logf(s.lv, "response=%s", resBody)
	}))
	g.GET(UrlContracts, func(c echo.Context) error {
		return c.JSON(http.StatusOK, s.r.Names())
	})
	g.POST(UrlContracts, func(c echo.Context) error {
		req := &RegisterRequest{}
		if err := bind(c, req); err != nil {
			s.l.Debugf("fail to bind err:%+v", err)
			return err
		}
		info, err := s.register(req.Name, &req.SpecRequest)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, info)
	})
	g.GET(UrlContracts+"/:"+ParamContract, func(c echo.Context) error {
		name := c.Param(ParamContract)
		codec, err := s.codec(name, &SpecRequest{})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, s.contractInfo(name, codec))
	})
	g.DELETE(UrlContracts+"/:"+ParamContract, func(c echo.Context) error {
		name := c.Param(ParamContract)
		if !s.r.Remove(name) {
			return contract.ErrorCodeSchemaNotFound.Errorf("not found contract:%s", name)
		}
		s.o.Remove(name)
		return c.NoContent(http.StatusOK)
	})
	g.GET(UrlContracts+"/:"+ParamContract+UrlOpenAPI, func(c echo.Context) error {
		name := c.Param(ParamContract)
		codec, err := s.codec(name, &SpecRequest{})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, s.o.GetOrMerge(name, codec.Spec()))
	})

	contractApi := g.Group("/:" + ParamContract)
	contractApi.POST(UrlEncode, contractHandler(s, "encode",
		func(r *EncodeRequest) *SpecRequest { return &r.SpecRequest }, s.encode))
	contractApi.POST(UrlCallData, contractHandler(s, "calldata",
		func(r *EncodeRequest) *SpecRequest { return &r.SpecRequest }, s.callData))
	contractApi.POST(UrlDecode, contractHandler(s, "decode",
		func(r *DecodeRequest) *SpecRequest { return &r.SpecRequest }, s.decode))
	contractApi.POST(UrlDecodeCallData, contractHandler(s, "decodeCallData",
		func(r *DecodeCallDataRequest) *SpecRequest { return &r.SpecRequest }, s.decodeCallData))
	contractApi.POST(UrlConstructor, contractHandler(s, "constructor",
		func(r *ConstructorRequest) *SpecRequest { return &r.SpecRequest }, s.constructor))
}

func UnmarshalRequestBody(c echo.Context, v interface{}) error {
	if c.Request().ContentLength == 0 {
		return nil
	}
	return UnmarshalBody(c.Request().Body, v)
}

// UnmarshalBody keeps JSON numbers as json.Number so that large integers
// survive decoding.
func UnmarshalBody(b io.ReadCloser, v interface{}) error {
	defer b.Close()
	d := json.NewDecoder(b)
	d.UseNumber()
	if err := d.Decode(v); err != nil {
		return err
	}
	return nil
}
