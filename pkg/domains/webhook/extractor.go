package webhook

import (
	"fmt"

	"github.com/wacrm/pkg/constant"
	"github.com/wacrm/pkg/dtos"
	"github.com/wacrm/pkg/entities"
)

// ExtractContent maps a raw message object to its normalized preview
// body, content kind and media attributes. The dispatch order is fixed:
// the first populated kind sub-object wins. Absent fields map to their
// zero values; the function has no failure mode.
func ExtractContent(m *dtos.WebhookMessage) (string, string, entities.MediaAttributes) {
	switch {
	case m.Text != nil:
		return m.Text.Body, constant.KindText, entities.MediaAttributes{}

	case m.Image != nil:
		return captionOr(m.Image.Caption, constant.PreviewImage), constant.KindImage, mediaAttrs(m.Image)

	case m.Document != nil:
		body := captionOr(m.Document.Caption, constant.PreviewDocument)
		if m.Document.Caption == "" && m.Document.Filename != "" {
			body = fmt.Sprintf("[Document: %s]", m.Document.Filename)
		}
		return body, constant.KindDocument, entities.MediaAttributes{
			URL:      m.Document.Link,
			MimeType: m.Document.MimeType,
			FileSize: m.Document.FileSize,
			Filename: m.Document.Filename,
		}

	case m.Audio != nil:
		return constant.PreviewAudio, constant.KindAudio, mediaAttrs(m.Audio)

	case m.Video != nil:
		return captionOr(m.Video.Caption, constant.PreviewVideo), constant.KindVideo, mediaAttrs(m.Video)

	case m.Sticker != nil:
		return constant.PreviewSticker, constant.KindSticker, mediaAttrs(m.Sticker)

	case m.Location != nil:
		body := constant.PreviewLocation
		if m.Location.Name != "" {
			body = fmt.Sprintf("[Location: %s]", m.Location.Name)
		}
		return body, constant.KindLocation, entities.MediaAttributes{
			Latitude:     m.Location.Latitude,
			Longitude:    m.Location.Longitude,
			LocationName: m.Location.Name,
		}

	case len(m.Contacts) > 0:
		body := constant.PreviewContact
		if name := m.Contacts[0].Name.FormattedName; name != "" {
			body = fmt.Sprintf("[Contact: %s]", name)
		}
		return body, constant.KindContact, entities.MediaAttributes{}

	default:
		return constant.PreviewUnknown, constant.KindUnknown, entities.MediaAttributes{}
	}
}

func captionOr(caption string, placeholder string) string {
	if caption != "" {
		return caption
	}
	return placeholder
}

func mediaAttrs(m *dtos.WebhookMedia) entities.MediaAttributes {
	return entities.MediaAttributes{
		URL:          m.Link,
		MimeType:     m.MimeType,
		FileSize:     m.FileSize,
		Thumbnail:    m.Thumbnail,
		DurationSecs: m.Duration,
		Width:        m.Width,
		Height:       m.Height,
	}
}
