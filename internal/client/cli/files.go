package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/strapiclient/internal/client/gateway"
	"github.com/dmitrijs2005/strapiclient/internal/client/models"
)

func (a *App) printFiles(files []models.File) {
	if len(files) == 0 {
		a.println("No files.")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMIME\tSIZE\tURL")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Name, f.Mime, f.Size, f.URL)
	}
	tw.Flush()
}

func (a *App) Files(ctx context.Context, args string) error {
	q, err := gateway.ParseQuery(strings.Fields(args))
	if err != nil {
		return err
	}
	files, err := a.client.Gateway.Files(ctx, q)
	if err != nil {
		return err
	}
	a.printFiles(files)
	return nil
}

func (a *App) File(ctx context.Context, args string) error {
	f, err := argsN(args, 1, "file <id>")
	if err != nil {
		return err
	}
	file, err := a.client.Gateway.File(ctx, f[0])
	if err != nil {
		return err
	}
	a.printFiles([]models.File{file})
	return nil
}

func (a *App) Search(ctx context.Context, args string) error {
	if args == "" {
		return usage("search <term>")
	}
	files, err := a.client.Gateway.SearchFiles(ctx, args)
	if err != nil {
		return err
	}
	a.printFiles(files)
	return nil
}

// Upload takes "path [ref refId field [source]]".
func (a *App) Upload(ctx context.Context, args string) error {
	f, err := argsN(args, 1, "upload <path> [ref refId field [source]]")
	if err != nil {
		return err
	}

	fh, err := os.Open(f[0])
	if err != nil {
		return err
	}
	defer fh.Close()

	name := filepath.Base(f[0])
	req := gateway.UploadRequest{
		Files: []gateway.UploadFile{{
			Name:        name,
			ContentType: mime.TypeByExtension(filepath.Ext(name)),
			Reader:      fh,
		}},
	}
	link := f[1:]
	if len(link) > 0 {
		if len(link) < 3 {
			return usage("upload <path> [ref refId field [source]]")
		}
		req.Ref, req.RefID, req.Field = link[0], link[1], link[2]
		if len(link) > 3 {
			req.Source = link[3]
		}
	}

	files, err := a.client.Gateway.Upload(ctx, req)
	if err != nil {
		return err
	}
	a.printFiles(files)
	return nil
}
