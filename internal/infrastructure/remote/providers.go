package remote

import "strings"

// Имена сервисов
const (
	ProviderRemoveBG  = "removebg"
	ProviderPhotoRoom = "photoroom"
	ProviderRembg     = "rembg"
)

// NewRemoveBG клиент remove.bg
func NewRemoveBG(opts Options) *Client {
	opts.Name = ProviderRemoveBG
	if opts.Endpoint == "" {
		opts.Endpoint = "https://api.remove.bg/v1.0/removebg"
	}
	opts.KeyHeader = "X-Api-Key"
	opts.RequireKey = true
	opts.FileField = "image_file"
	opts.Fields = map[string]string{"size": "auto"}
	return NewClient(opts)
}

// NewPhotoRoom клиент сегментации PhotoRoom
func NewPhotoRoom(opts Options) *Client {
	opts.Name = ProviderPhotoRoom
	if opts.Endpoint == "" {
		opts.Endpoint = "https://sdk.photoroom.com/v1/segment"
	}
	opts.KeyHeader = "X-API-Key"
	opts.RequireKey = true
	opts.FileField = "image_file"
	return NewClient(opts)
}

// NewPhotoRoomGenerator клиент PhotoRoom для замены фона по описанию; описание передаётся
// полем background_prompt при вызове.
func NewPhotoRoomGenerator(opts Options) *Client {
	opts.Name = ProviderPhotoRoom + "_generate"
	if opts.Endpoint == "" {
		opts.Endpoint = "https://sdk.photoroom.com/v1/segment"
	}
	opts.KeyHeader = "X-API-Key"
	opts.RequireKey = true
	opts.FileField = "image_file"
	opts.Fields = map[string]string{
		"output_format":    "jpg",
		"background_color": "#ffffff",
	}
	return NewClient(opts)
}

// NewRembg клиент самостоятельно размещённого rembg; ключ не нужен.
// Пустой baseURL означает, что сервис не настроен.
func NewRembg(baseURL string, opts Options) *Client {
	opts.Name = ProviderRembg
	opts.Endpoint = ""
	if base := strings.TrimRight(strings.TrimSpace(baseURL), "/"); base != "" {
		opts.Endpoint = base + "/api/remove"
	}
	opts.RequireKey = false
	opts.FileField = "file"
	return NewClient(opts)
}

// Ordered ставит предпочтительный сервис первым, остальные сохраняют порядок.
// Значение "local" отключает все удалённые сервисы.
func Ordered(preferred string, clients ...*Client) []*Client {
	preferred = strings.ToLower(strings.TrimSpace(preferred))
	if preferred == "local" {
		return nil
	}
	out := make([]*Client, 0, len(clients))
	for _, c := range clients {
		if c.Name() == preferred {
			out = append(out, c)
		}
	}
	for _, c := range clients {
		if c.Name() != preferred {
			out = append(out, c)
		}
	}
	return out
}
