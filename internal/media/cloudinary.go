// Package media signs Cloudinary uploads and manages remote assets through
// the Cloudinary HTTP API. The backend never proxies image bytes; clients
// upload directly with a short-lived signature.
package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/formloom/formloom-backend/internal/apperr"
	"github.com/formloom/formloom-backend/internal/config"
)

const apiBase = "https://api.cloudinary.com/v1_1"

type Cloudinary struct {
	cloudName string
	apiKey    string
	apiSecret string
	client    *http.Client
}

func NewCloudinary(cfg *config.Config) *Cloudinary {
	return &Cloudinary{
		cloudName: cfg.CloudinaryCloudName,
		apiKey:    cfg.CloudinaryAPIKey,
		apiSecret: cfg.CloudinaryAPISecret,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Cloudinary) Enabled() bool {
	return c.cloudName != "" && c.apiKey != "" && c.apiSecret != ""
}

// UploadSignature is everything a client needs to upload straight to
// Cloudinary with the parameters we signed.
type UploadSignature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"apiKey"`
	CloudName string `json:"cloudName"`
	Tags      string `json:"tags"`
}

// SignUpload signs an upload scoped by tags (resource type, owning id and
// kind) so assets can later be bulk-deleted by tag.
func (c *Cloudinary) SignUpload(assetType, assetID, resourceType string) (*UploadSignature, error) {
	if !c.Enabled() {
		return nil, apperr.Internal("Media storage is not configured")
	}

	timestamp := time.Now().Unix()
	tags := strings.Join([]string{assetType, assetID, resourceType}, ",")
	params := map[string]string{
		"timestamp": fmt.Sprintf("%d", timestamp),
		"tags":      tags,
	}

	return &UploadSignature{
		Signature: c.sign(params),
		Timestamp: timestamp,
		APIKey:    c.apiKey,
		CloudName: c.cloudName,
		Tags:      tags,
	}, nil
}

// sign builds the Cloudinary API signature: parameters sorted by key,
// joined as k=v with &, the secret appended, SHA-1 hex digested.
func (c *Cloudinary) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	payload := strings.Join(pairs, "&") + c.apiSecret

	digest := sha1.Sum([]byte(payload))
	return hex.EncodeToString(digest[:])
}

// Destroy deletes a single uploaded image by public id.
func (c *Cloudinary) Destroy(ctx context.Context, publicID string) error {
	if !c.Enabled() {
		return apperr.Internal("Media storage is not configured")
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	signature := c.sign(map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	})

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", c.apiKey)
	form.Set("signature", signature)

	endpoint := fmt.Sprintf("%s/%s/image/destroy", apiBase, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cloudinary destroy returned %d", resp.StatusCode)
	}

	var body struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	if body.Result != "ok" && body.Result != "not found" {
		return fmt.Errorf("cloudinary destroy result %q", body.Result)
	}
	return nil
}

// DeleteByTag removes every image carrying the tag. Used when a form or
// workspace goes away.
func (c *Cloudinary) DeleteByTag(ctx context.Context, tag string) error {
	if !c.Enabled() {
		return apperr.Internal("Media storage is not configured")
	}

	endpoint := fmt.Sprintf("%s/%s/resources/image/tags/%s", apiBase, c.cloudName, url.PathEscape(tag))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("cloudinary delete by tag returned %d", resp.StatusCode)
	}
	return nil
}
