package graphics

import (
	"image"
	"image/draw"
	"unsafe"

	glpkg "github.com/tinyrange/multiwin/internal/gl"
)

// NewTexture uploads img as an RGBA texture with linear filtering and
// returns its name. The caller owns the texture.
func NewTexture(gl glpkg.OpenGL, img image.Image) uint32 {
	nrgba := image.NewNRGBA(img.Bounds())
	draw.Draw(nrgba, nrgba.Bounds(), img, img.Bounds().Min, draw.Src)

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(glpkg.Texture2D, texID)
	gl.TexParameteri(glpkg.Texture2D, glpkg.TextureMinFilter, glpkg.Linear)
	gl.TexParameteri(glpkg.Texture2D, glpkg.TextureMagFilter, glpkg.Linear)

	if len(nrgba.Pix) > 0 {
		gl.TexImage2D(
			glpkg.Texture2D,
			0,
			int32(glpkg.RGBA),
			int32(nrgba.Rect.Dx()),
			int32(nrgba.Rect.Dy()),
			0,
			glpkg.RGBA,
			glpkg.UnsignedByte,
			unsafe.Pointer(&nrgba.Pix[0]),
		)
	}
	gl.BindTexture(glpkg.Texture2D, 0)

	return texID
}

func DeleteTexture(gl glpkg.OpenGL, texID uint32) {
	if texID == 0 {
		return
	}
	gl.DeleteTextures(1, &texID)
}
