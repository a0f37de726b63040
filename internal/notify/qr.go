package notify

import qrcode "github.com/skip2/go-qrcode"

// qrSize is the pixel width/height of generated QR images.  256px scans
// reliably from both screens and 300dpi prints.
const qrSize = 256

// QRImage encodes a ticket's scan payload as a PNG.  Pure encoding, no
// business state; medium error correction tolerates print damage.
func QRImage(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, qrSize)
}
