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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gorilla/websocket"
	"github.com/icon-project/btp2/common/errors"
	"github.com/labstack/echo/v4"

	"github.com/icon-project/abi-scope/contract"
)

const (
	OpContracts      = "contracts"
	OpRegister       = "register"
	OpEncode         = "encode"
	OpCallData       = "calldata"
	OpDecode         = "decode"
	OpDecodeCallData = "decodeCallData"
	OpConstructor    = "constructor"
)

// BridgeRequest is one message of the bridge session. Fields other than ID,
// Op and Contract are used depending on Op.
type BridgeRequest struct {
	ID       json.RawMessage `json:"id,omitempty"`
	Op       string          `json:"op" validate:"required,oneof=contracts register encode calldata decode decodeCallData constructor"`
	Contract string          `json:"contract" validate:"required_unless=Op contracts"`
	SpecRequest
	Function  string          `json:"function,omitempty"`
	Signature string          `json:"signature,omitempty"`
	Params    contract.Params `json:"params,omitempty"`
	Data      string          `json:"data,omitempty" validate:"hexdata"`
	Args      []string        `json:"args,omitempty"`
}

type BridgeResponse struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ErrorResponse  `json:"error,omitempty"`
}

func (s *Server) bridge(req *BridgeRequest) (interface{}, error) {
	if err := s.e.Validator.Validate(req); err != nil {
		return nil, err
	}
	switch req.Op {
	case OpContracts:
		return s.r.Names(), nil
	case OpRegister:
		return s.register(req.Contract, &req.SpecRequest)
	}
	c, err := s.codec(req.Contract, &req.SpecRequest)
	if err != nil {
		return nil, err
	}
	switch req.Op {
	case OpEncode:
		return s.encode(c, &EncodeRequest{Function: req.Function, Signature: req.Signature, Params: req.Params})
	case OpCallData:
		return s.callData(c, &EncodeRequest{Function: req.Function, Signature: req.Signature, Params: req.Params})
	case OpDecode:
		return s.decode(c, &DecodeRequest{Function: req.Function, Signature: req.Signature, Data: req.Data})
	case OpDecodeCallData:
		return s.decodeCallData(c, &DecodeCallDataRequest{Data: req.Data})
	case OpConstructor:
		return s.constructor(c, &ConstructorRequest{Args: req.Args})
	default:
		return nil, errors.Errorf("not supported op:%s", req.Op)
	}
}

func (s *Server) bridgeResponse(req *BridgeRequest, ret interface{}, err error) *BridgeResponse {
	resp := &BridgeResponse{ID: req.ID}
	if err == nil {
		if resp.Result, err = json.Marshal(ret); err == nil {
			return resp
		}
	}
	if he, ok := err.(*echo.HTTPError); ok {
		err = errors.New(fmt.Sprint(he.Message))
	}
	resp.Error = NewErrorResponse(err)
	return resp
}

func (s *Server) wsID(conn *websocket.Conn) string {
	return conn.RemoteAddr().String()
}

func (s *Server) wsConnect(c echo.Context) (*websocket.Conn, error) {
	conn, err := s.u.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.l.Debugf("fail to Upgrade err:%+v", err)
		return nil, err
	}
	s.l.Debugf("[%s]wsConnect", s.wsID(conn))
	return conn, nil
}

func (s *Server) wsClose(conn *websocket.Conn) {
	s.l.Debugf("[%s]wsClose", s.wsID(conn))
	conn.Close()
}

func (s *Server) wsWrite(conn *websocket.Conn, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.l.Logf(s.lv, "[%s]wsWrite=%s", s.wsID(conn), b)
	return conn.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) wsReadLoop(ctx context.Context, conn *websocket.Conn, cb func(b []byte) error) error {
	id := s.wsID(conn)
	ech := make(chan error, 1)
	go func() {
		defer func() {
			s.l.Debugf("[%s]wsReadLoop finish", id)
		}()
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				ech <- err
				break
			}
			s.l.Logf(s.lv, "[%s]wsReadLoop=%s", id, b)
			if err = cb(b); err != nil {
				ech <- err
				break
			}
		}
	}()

	select {
	case <-ctx.Done():
		s.l.Debugf("[%s]wsReadLoop context Done", id)
		return ctx.Err()
	case err := <-ech:
		s.l.Debugf("[%s]wsReadLoop err:%+v", id, err)
		return err
	}
}

func (s *Server) RegisterMonitorHandler(g *echo.Group) {
	g.GET(UrlBridge, func(c echo.Context) error {
		conn, err := s.wsConnect(c)
		if err != nil {
			return err
		}
		defer s.wsClose(conn)
		id := s.wsID(conn)
		_ = s.wsReadLoop(c.Request().Context(), conn, func(b []byte) error {
			req := &BridgeRequest{}
			var resp *BridgeResponse
			if err := UnmarshalBody(io.NopCloser(bytes.NewReader(b)), req); err != nil {
				resp = s.bridgeResponse(req, nil, errors.Wrapf(err, "fail to Unmarshal err:%s", err.Error()))
			} else {
				ret, err := s.bridge(req)
				if err != nil {
					s.l.Debugf("[%s]fail to bridge op:%s err:%+v", id, req.Op, err)
				}
				resp = s.bridgeResponse(req, ret, err)
			}
			return s.wsWrite(conn, resp)
		})
		return nil
	})
}
