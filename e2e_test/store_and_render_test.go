//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jsphweid/noted/cmd"
	"github.com/jsphweid/noted/codec"
	"github.com/jsphweid/noted/constants"
	"github.com/jsphweid/noted/db"
	"github.com/jsphweid/noted/model"
	"github.com/stretchr/testify/assert"
)

var server *cmd.Server

// Needs a DynamoDB (e.g. dynamodb-local) at NOTED_DYNAMO_ENDPOINT with the
// NOTED_TABLE table keyed by the string attribute PK.
func TestMain(m *testing.M) {
	store, err := db.New(constants.GetDynamoEndpoint(), constants.GetRegion(), constants.GetTable())
	if err != nil {
		panic(err.Error())
	}
	server = cmd.NewServer(store)

	exitVal := m.Run()

	os.Exit(exitVal)
}

func createReqBody(v interface{}) io.Reader {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err.Error())
	}
	return bytes.NewReader(data)
}

func groove() codec.Document {
	return codec.Document{
		Bpm:          96,
		Meter:        "4/4",
		Notes:        []string{"bd@0.0/4", "hhc@0.0/8?accent", "sn@0.1/4", "hho@0.3/8", "sn@1.3/16*3:2?flam"},
		BpmChanges:   []string{"100:bpm@1"},
		MeterChanges: []string{"6/8:meter@2"},
	}
}

func TestStoreAndLoadE2E(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/compositions", createReqBody(groove()))
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	assert := assert.New(t)
	assert.Equal(http.StatusCreated, w.Code)

	var created model.IdResponse
	err := json.Unmarshal(w.Body.Bytes(), &created)
	if err != nil {
		panic(err.Error())
	}

	req = httptest.NewRequest(http.MethodGet, "/compositions/"+created.Id, nil)
	w = httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	assert.Equal(http.StatusOK, w.Code)

	var doc codec.Document
	err = json.Unmarshal(w.Body.Bytes(), &doc)
	if err != nil {
		panic(err.Error())
	}
	assert.Equal(groove(), doc)
}

func TestRenderE2E(t *testing.T) {
	body := createReqBody(map[string]interface{}{
		"composition": groove(),
		"options":     map[string]interface{}{"id": "e2e", "detectRepeats": true},
	})
	req := httptest.NewRequest(http.MethodPost, "/render", body)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	assert := assert.New(t)
	assert.Equal(http.StatusOK, w.Code)

	var res model.RenderResponse
	err := json.Unmarshal(w.Body.Bytes(), &res)
	if err != nil {
		panic(err.Error())
	}
	assert.Contains(res.Abc, "%%fullsvg e2e")
	assert.Contains(res.Abc, "M:6/8")
	assert.Contains(res.Abc, "Q:1/4=100")
}
