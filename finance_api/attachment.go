package finance_api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadAttachment associates one file with an already-created transaction.
// The backend expects a multipart form with the file under field "attachment".
func (c *Client) UploadAttachment(ctx context.Context, transactionID string, filename string, content io.Reader) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("attachment", filename)
	if err != nil {
		return err
	}

	_, err = io.Copy(part, content)
	if err != nil {
		return err
	}

	err = writer.Close()
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost,
		fmt.Sprintf("/transactions/attachment/%s", transactionID), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	err = c.authorize(req)
	if err != nil {
		return err
	}

	return c.send(req, nil)
}
