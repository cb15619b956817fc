package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

// TableStorage implements Storage on an Azure Table. Every path is one entity in a
// single partition; the row key is the escaped path. Data is split across
// base64 string properties Data00, Data01, ... because one property holds at
// most 64 KiB.
type TableStorage struct {
	client       *aztables.Client
	partitionKey string
}

const (
	// tableChunkBytes encodes to 32000 base64 characters, inside the 64 KiB
	// (UTF-16) property limit.
	tableChunkBytes = 24000
	// maxTableChunks keeps the entity under the 1 MiB entity limit.
	maxTableChunks = 15
)

func tableClientOptions(transport policy.Transporter) *aztables.ClientOptions {
	return &aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute,
				RetryDelay:    time.Second,
				MaxRetryDelay: 15 * time.Second,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
			Transport: transport,
		},
	}
}

// NewTableStorage connects to the table service and creates the table if needed.
func NewTableStorage(ctx context.Context, connStr, table, partitionKey string) (*TableStorage, error) {
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, tableClientOptions(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create table service client: %w", err)
	}
	client := svc.NewClient(table)
	if _, err := client.CreateTable(ctx, nil); err != nil {
		var respErr *azcore.ResponseError
		if !(errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists)) {
			return nil, fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return &TableStorage{client: client, partitionKey: partitionKey}, nil
}

func chunkProperty(i int) string {
	return fmt.Sprintf("Data%02d", i)
}

// rowKey escapes characters that Azure forbids in row keys ('/', '\', '#', '?').
func rowKey(path string) string {
	return url.PathEscape(strings.TrimPrefix(path, "/"))
}

func pathFromRowKey(key string) (string, error) {
	return url.PathUnescape(key)
}

func (s *TableStorage) Read(ctx context.Context, path string) ([]byte, error) {
	resp, err := s.client.GetEntity(ctx, s.partitionKey, rowKey(path), nil)
	if err != nil {
		if isTableNotFound(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read table entity %s: %w", path, err)
	}
	var ent struct {
		Chunks int `json:"Chunks"`
	}
	props := map[string]any{}
	if err := json.Unmarshal(resp.Value, &ent); err != nil {
		return nil, fmt.Errorf("failed to decode table entity %s: %w", path, err)
	}
	if err := json.Unmarshal(resp.Value, &props); err != nil {
		return nil, fmt.Errorf("failed to decode table entity %s: %w", path, err)
	}
	var data []byte
	for i := range ent.Chunks {
		chunk, ok := props[chunkProperty(i)].(string)
		if !ok {
			return nil, fmt.Errorf("table entity %s is missing %s", path, chunkProperty(i))
		}
		b, err := base64.StdEncoding.DecodeString(chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s of table entity %s: %w", chunkProperty(i), path, err)
		}
		data = append(data, b...)
	}
	return data, nil
}

func (s *TableStorage) Write(ctx context.Context, path string, data []byte) error {
	chunks := (len(data) + tableChunkBytes - 1) / tableChunkBytes
	if chunks > maxTableChunks {
		return fmt.Errorf("table entity %s needs %d bytes: %w", path, len(data), ErrQuotaExceeded)
	}
	ent := map[string]any{
		"PartitionKey": s.partitionKey,
		"RowKey":       rowKey(path),
		"Chunks":       chunks,
	}
	for i := range chunks {
		end := min(len(data), (i+1)*tableChunkBytes)
		ent[chunkProperty(i)] = base64.StdEncoding.EncodeToString(data[i*tableChunkBytes : end])
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return fmt.Errorf("failed to encode table entity %s: %w", path, err)
	}
	_, err = s.client.UpsertEntity(ctx, payload, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace})
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && (respErr.ErrorCode == "EntityTooLarge" || respErr.ErrorCode == "PropertyValueTooLarge") {
			return fmt.Errorf("failed to write table entity %s: %w: %w", path, ErrQuotaExceeded, err)
		}
		return fmt.Errorf("failed to write table entity %s: %w", path, err)
	}
	return nil
}

func (s *TableStorage) Delete(ctx context.Context, path string) error {
	if _, err := s.client.DeleteEntity(ctx, s.partitionKey, rowKey(path), nil); err != nil {
		if isTableNotFound(err) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("failed to delete table entity %s: %w", path, err)
	}
	return nil
}

func (s *TableStorage) List(ctx context.Context, prefix string) ([]string, error) {
	dir := ""
	if p := strings.Trim(prefix, "/"); p != "" {
		dir = p + "/"
	}
	filter := "PartitionKey eq '" + strings.ReplaceAll(s.partitionKey, "'", "''") + "'"
	sel := "RowKey"
	pager := s.client.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter, Select: &sel})
	var paths []string
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list table entities: %w", err)
		}
		for _, raw := range resp.Entities {
			var ent aztables.Entity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, fmt.Errorf("failed to decode table entity: %w", err)
			}
			p, err := pathFromRowKey(ent.RowKey)
			if err != nil {
				continue
			}
			rest, ok := strings.CutPrefix(p, dir)
			if !ok || strings.Contains(rest, "/") {
				continue
			}
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *TableStorage) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.GetEntity(ctx, s.partitionKey, rowKey(path), nil)
	if err != nil {
		if isTableNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check table entity %s: %w", path, err)
	}
	return true, nil
}

func isTableNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
