package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Service talks to Google Drive and Google Sheets with one service account.
type Service struct {
	srv    *drive.Service
	sheets *sheets.Service
}

func NewService(ctx context.Context, credentialsJSON []byte) (*Service, error) {
	// Parse credentials from JSON
	config, err := google.JWTConfigFromJSON(
		credentialsJSON,
		drive.DriveReadonlyScope,
		sheets.SpreadsheetsReadonlyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account credentials: %w", err)
	}

	// Create the JWT client
	client := config.Client(ctx)

	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}

	sheetsSrv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Sheets client: %w", err)
	}

	return &Service{srv: srv, sheets: sheetsSrv}, nil
}

type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,string,omitempty"`
}

func (s *Service) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	var files []*File

	// If no folder ID is provided, use "root"
	if folderID == "" {
		folderID = "root"
	}

	call := s.srv.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", folderID)).
		Fields("nextPageToken, files(id, name, mimeType, modifiedTime, size)").
		OrderBy("name").
		Context(ctx)

	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			files = append(files, &File{
				ID:           f.Id,
				Name:         f.Name,
				MimeType:     f.MimeType,
				ModifiedTime: f.ModifiedTime,
				Size:         f.Size,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve files: %w", err)
	}

	return files, nil
}

func (s *Service) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	resp, err := s.srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("unable to download file: %w", err)
	}
	defer resp.Body.Close()

	_, err = io.Copy(w, resp.Body)
	return err
}

// FindFolderByPath walks a slash separated folder path from My Drive root.
func (s *Service) FindFolderByPath(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "root", nil
	}

	folders := strings.Split(path, "/")
	currentID := "root"

	for _, folder := range folders {
		if folder == "" {
			continue
		}

		result, err := s.srv.Files.List().
			Q(fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
				currentID, strings.ReplaceAll(folder, "'", "\\'"), folderMimeType)).
			Fields("files(id, name)").
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("error finding folder %s: %w", folder, err)
		}

		if len(result.Files) == 0 {
			return "", fmt.Errorf("folder not found: %s", folder)
		}

		currentID = result.Files[0].Id
	}

	return currentID, nil
}

// ResolveFolder accepts either a folder ID or "path:<a/b/c>".
func (s *Service) ResolveFolder(ctx context.Context, ref string) (string, error) {
	if path, ok := strings.CutPrefix(ref, "path:"); ok {
		return s.FindFolderByPath(ctx, path)
	}
	return ref, nil
}

// ReadWorksheet reads all values of one worksheet; the first row is the header.
func (s *Service) ReadWorksheet(ctx context.Context, spreadsheetID, worksheet string) ([][]interface{}, error) {
	resp, err := s.sheets.Spreadsheets.Values.Get(spreadsheetID, quoteSheetName(worksheet)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to read worksheet %s: %w", worksheet, err)
	}
	return resp.Values, nil
}

func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
