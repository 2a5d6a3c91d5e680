package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/JaimeStill/binsort/pkg/lifecycle"
)

type azure struct {
	client      *azblob.Client
	container   string
	maxListSize int32
	logger      *slog.Logger
}

// NewAzure creates a blob-backed storage system. A connection string takes
// precedence; otherwise the account URL is used with the default Azure
// credential chain. No request is made until Start is called.
func NewAzure(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:      client,
		container:   cfg.ContainerName,
		maxListSize: cfg.MaxListSize,
		logger:      logger.With("system", "storage", "backend", BackendAzure),
	}, nil
}

func newClient(cfg *Config) (*azblob.Client, error) {
	if cfg.ConnectionString != "" {
		return azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azblob.NewClient(cfg.AccountURL, cred, nil)
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("initialize storage container: %w", err)
	}

	a.logger.Info("storage container ready", "container", a.container)
	return nil
}

// Ensure validates the names only; prefixes exist implicitly in blob storage.
func (a *azure) Ensure(ctx context.Context, containers ...string) error {
	return validate(containers...)
}

func (a *azure) Stage(ctx context.Context, name string, r io.Reader) error {
	if err := validateKey(name); err != nil {
		return err
	}
	return a.upload(ctx, key(StagingArea, name), r)
}

func (a *azure) Commit(ctx context.Context, name, container string) error {
	if err := validate(name, container); err != nil {
		return err
	}
	if container == StagingArea {
		return ErrInvalidKey
	}

	staged := key(StagingArea, name)
	resp, err := a.client.DownloadStream(ctx, a.container, staged, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("read staged %s: %w", name, err)
	}
	defer resp.Body.Close()

	if err := a.upload(ctx, key(container, name), resp.Body); err != nil {
		return err
	}

	if _, err := a.client.DeleteBlob(ctx, a.container, staged, nil); err != nil {
		a.logger.Warn("staged blob not removed after commit", "name", name, "error", err)
	}

	return nil
}

func (a *azure) Discard(ctx context.Context, name string) error {
	if err := validateKey(name); err != nil {
		return err
	}

	_, err := a.client.DeleteBlob(ctx, a.container, key(StagingArea, name), nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("discard %s: %w", name, err)
	}

	return nil
}

func (a *azure) List(ctx context.Context, container string) ([]Object, error) {
	if err := validateKey(container); err != nil {
		return nil, err
	}

	prefix := container + "/"
	pager := a.client.NewListBlobsFlatPager(a.container, &azblob.ListBlobsFlatOptions{
		Prefix:     to.Ptr(prefix),
		MaxResults: to.Ptr(a.maxListSize),
	})

	objects := make([]Object, 0)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", container, err)
		}

		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			name := strings.TrimPrefix(*item.Name, prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}

			obj := Object{Name: name}
			if p := item.Properties; p != nil {
				if p.ContentLength != nil {
					obj.Size = *p.ContentLength
				}
				if p.LastModified != nil {
					obj.ModifiedAt = *p.LastModified
				}
			}
			objects = append(objects, obj)
		}
	}

	return objects, nil
}

func (a *azure) Open(ctx context.Context, container, name string) (io.ReadCloser, error) {
	if err := validate(container, name); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key(container, name), nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open %s/%s: %w", container, name, err)
	}

	return resp.Body, nil
}

func (a *azure) upload(ctx context.Context, k string, r io.Reader) error {
	opts := &azblob.UploadStreamOptions{}
	if ct := mime.TypeByExtension(path.Ext(k)); ct != "" {
		opts.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: to.Ptr(ct)}
	}

	if _, err := a.client.UploadStream(ctx, a.container, k, r, opts); err != nil {
		return fmt.Errorf("upload blob %s: %w", k, err)
	}
	return nil
}

func key(container, name string) string {
	return container + "/" + name
}
