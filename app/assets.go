package app

import (
	"bytes"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rotisserie/eris"
)

// ErrAssetNotFound is returned when an asset path does not exist under the
// asset directory.
var ErrAssetNotFound = eris.New("asset not found")

// AssetServer loads files from the configured asset directory and caches
// them by relative path.
type AssetServer struct {
	root   string
	images map[string]*ebiten.Image
	blobs  map[string][]byte
}

// NewAssetServer creates a server rooted at dir.
func NewAssetServer(dir string) *AssetServer {
	return &AssetServer{
		root:   dir,
		images: make(map[string]*ebiten.Image),
		blobs:  make(map[string][]byte),
	}
}

// Bytes returns the raw contents of the asset at the relative path, reading
// it once and caching it.
func (s *AssetServer) Bytes(path string) ([]byte, error) {
	if blob, ok := s.blobs[path]; ok {
		return blob, nil
	}

	full := filepath.Join(s.root, filepath.FromSlash(path))
	blob, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return nil, eris.Wrapf(ErrAssetNotFound, "%s", path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "reading asset %s", path)
	}

	s.blobs[path] = blob
	return blob, nil
}

// Image decodes the asset at the relative path as an image, caching the
// result.
func (s *AssetServer) Image(path string) (*ebiten.Image, error) {
	if img, ok := s.images[path]; ok {
		return img, nil
	}

	blob, err := s.Bytes(path)
	if err != nil {
		return nil, err
	}

	decoded, _, err := image.Decode(bytes.NewReader(blob))
	if err != nil {
		return nil, eris.Wrapf(err, "decoding image asset %s", path)
	}

	img := ebiten.NewImageFromImage(decoded)
	s.images[path] = img
	return img, nil
}

// AssetPlugin installs the AssetServer resource rooted at the configured
// asset directory.
type AssetPlugin struct{}

func (AssetPlugin) Build(app *App) error {
	app.InsertResource(*NewAssetServer(app.Config().AssetDir))
	return nil
}
