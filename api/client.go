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
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/websocket"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
)

type Client struct {
	*http.Client
	baseUrl        string
	baseApiUrl     string
	baseMonitorUrl string
	lv             log.Level
	l              log.Logger
}

func NewClient(url string, transportLogLevel log.Level, l log.Logger) *Client {
	l = Logger(l)
	url = strings.TrimSuffix(url, "/")
	return &Client{
		Client:         NewHttpClient(transportLogLevel, l),
		baseUrl:        url,
		baseApiUrl:     url + GroupUrlApi,
		baseMonitorUrl: url + GroupUrlMonitor,
		lv:             EnsureTransportLogLevel(transportLogLevel),
		l:              l,
	}
}

func (c *Client) apiUrl(format string, args ...interface{}) string {
	return c.baseApiUrl + fmt.Sprintf(format, args...)
}

func (c *Client) do(method, url string, reqPtr, respPtr interface{}) (resp *http.Response, err error) {
	var reqBody io.Reader
	if reqPtr != nil {
		var b []byte
		if b, err = json.Marshal(reqPtr); err != nil {
			c.l.Debugf("fail to encode Request err:%+v", err)
			return nil, err
		}
		reqBody = bytes.NewReader(b)
	}
	if !strings.HasPrefix(url, c.baseApiUrl) {
		url = c.baseApiUrl + url
	}
	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		c.l.Debugf("fail to NewRequest err:%+v", err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.l.Debugf("url=%s", req.URL)
	if resp, err = c.Client.Do(req); err != nil {
		return
	}
	if resp.StatusCode/100 != 2 {
		er := &ErrorResponse{}
		if err = UnmarshalBody(resp.Body, er); err != nil {
			c.l.Debugf("fail to decode ErrorResponse err:%+v", err)
			err = errors.Errorf("server response not success, StatusCode:%d",
				resp.StatusCode)
			return
		}
		err = er
		return
	}
	if respPtr != nil {
		if err = UnmarshalBody(resp.Body, respPtr); err != nil {
			c.l.Debugf("fail to decode resp err:%+v", err)
			return
		}
	} else {
		resp.Body.Close()
	}
	return
}

func (c *Client) Contracts() ([]string, error) {
	var names []string
	if _, err := c.do(http.MethodGet, c.apiUrl(UrlContracts), nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Client) Register(req *RegisterRequest) (*ContractInfo, error) {
	info := &ContractInfo{}
	if _, err := c.do(http.MethodPost, c.apiUrl(UrlContracts), req, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *Client) Contract(name string) (*ContractInfo, error) {
	info := &ContractInfo{}
	if _, err := c.do(http.MethodGet, c.apiUrl("%s/%s", UrlContracts, name), nil, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *Client) Unregister(name string) error {
	_, err := c.do(http.MethodDelete, c.apiUrl("%s/%s", UrlContracts, name), nil, nil)
	return err
}

func (c *Client) OpenAPI(name string) (*openapi3.T, error) {
	doc := &openapi3.T{}
	if _, err := c.do(http.MethodGet, c.apiUrl("%s/%s%s", UrlContracts, name, UrlOpenAPI), nil, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) Encode(name string, req *EncodeRequest) (*EncodeResponse, error) {
	resp := &EncodeResponse{}
	if _, err := c.do(http.MethodPost, c.apiUrl("/%s%s", name, UrlEncode), req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) CallData(name string, req *EncodeRequest) (*CallDataResponse, error) {
	resp := &CallDataResponse{}
	if _, err := c.do(http.MethodPost, c.apiUrl("/%s%s", name, UrlCallData), req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Decode(name string, req *DecodeRequest) (*DecodeResponse, error) {
	resp := &DecodeResponse{}
	if _, err := c.do(http.MethodPost, c.apiUrl("/%s%s", name, UrlDecode), req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) DecodeCallData(name string, req *DecodeCallDataRequest) (*DecodeResponse, error) {
	resp := &DecodeResponse{}
	if _, err := c.do(http.MethodPost, c.apiUrl("/%s%s", name, UrlDecodeCallData), req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Constructor(name string, req *ConstructorRequest) (*ConstructorResponse, error) {
	resp := &ConstructorResponse{}
	if _, err := c.do(http.MethodPost, c.apiUrl("/%s%s", name, UrlConstructor), req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) monitorUrl(format string, args ...interface{}) string {
	return c.baseMonitorUrl + fmt.Sprintf(format, args...)
}

func (c *Client) wsID(conn *websocket.Conn) string {
	return conn.LocalAddr().String()
}

func (c *Client) wsConnect(ctx context.Context, url string) (*websocket.Conn, error) {
	url = strings.Replace(url, "http", "ws", 1)
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = WsHandshakeTimeout
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if err == websocket.ErrBadHandshake && resp != nil {
			er := &ErrorResponse{}
			if uErr := UnmarshalBody(resp.Body, er); uErr != nil {
				err = errors.Errorf("server response not success, StatusCode:%d",
					resp.StatusCode)
			} else {
				err = er
			}
		}
		c.l.Debugf("fail to Dial url:%s err:%+v", url, err)
		return nil, err
	}
	c.l.Debugf("[%s]wsConnect", c.wsID(conn))
	return conn, nil
}

func (c *Client) wsClose(conn *websocket.Conn) {
	c.l.Debugf("[%s]wsClose", c.wsID(conn))
	conn.Close()
}

func (c *Client) wsRead(ctx context.Context, conn *websocket.Conn, v interface{}) error {
	id := c.wsID(conn)
	ch := make(chan interface{}, 1)
	go func() {
		_, b, err := conn.ReadMessage()
		if err != nil {
			ch <- err
		} else {
			ch <- b
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case inf := <-ch:
		switch t := inf.(type) {
		case error:
			return t
		case []byte:
			c.l.Logf(c.lv, "[%s]wsRead=%s", id, t)
			return UnmarshalBody(io.NopCloser(bytes.NewReader(t)), v)
		default:
			c.l.Panicln("unreachable code")
			return nil
		}
	}
}

func (c *Client) wsWrite(conn *websocket.Conn, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.l.Logf(c.lv, "[%s]wsWrite=%s", c.wsID(conn), b)
	return conn.WriteMessage(websocket.TextMessage, b)
}

// Bridge sends reqs over a single bridge session in order and calls cb with
// each response. It stops at the first error returned by cb.
func (c *Client) Bridge(ctx context.Context, reqs []*BridgeRequest, cb func(*BridgeResponse) error) error {
	conn, err := c.wsConnect(ctx, c.monitorUrl(UrlBridge))
	if err != nil {
		return err
	}
	defer c.wsClose(conn)
	id := c.wsID(conn)
	for _, req := range reqs {
		if err = c.wsWrite(conn, req); err != nil {
			c.l.Debugf("[%s]fail to wsWrite err:%+v", id, err)
			return err
		}
		resp := &BridgeResponse{}
		if err = c.wsRead(ctx, conn, resp); err != nil {
			c.l.Debugf("[%s]fail to wsRead err:%+v", id, err)
			return err
		}
		if err = cb(resp); err != nil {
			return err
		}
	}
	return nil
}
