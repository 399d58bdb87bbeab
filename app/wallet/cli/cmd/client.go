package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var client = http.Client{
	Timeout: 10 * time.Second,
}

// send performs the request against the node and decodes the response into
// dataRecv when it is provided.
func send(method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, errResp.Message)
	}

	if dataRecv != nil {
		return json.NewDecoder(resp.Body).Decode(dataRecv)
	}

	return nil
}
