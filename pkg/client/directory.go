package client

import (
	"fmt"
	"net/url"

	"innkeep/pkg/model"
)

// DirectoryClient calls the rooms and packages API.
type DirectoryClient struct {
	httpClient *HttpClient
}

func NewDirectoryClient(baseUrl string) *DirectoryClient {
	return &DirectoryClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *DirectoryClient) WithAdminToken(token string) *DirectoryClient {
	c.httpClient.SetHeader("Authorization", "Bearer "+token)
	return c
}

func (c *DirectoryClient) HTTP() *HttpClient {
	return c.httpClient
}

func (c *DirectoryClient) CreateRoom(room *model.Room) (*Response, error) {
	return c.httpClient.POST("/api/v1/rooms", room)
}

func (c *DirectoryClient) GetRoom(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/rooms/id/" + url.PathEscape(id))
}

func (c *DirectoryClient) ListRooms(limit int, offset int64) (*Response, error) {
	return c.httpClient.GET(fmt.Sprintf("/api/v1/rooms?limit=%d&offset=%d", limit, offset))
}

func (c *DirectoryClient) UpdateRoom(id string, updates *model.RoomUpdate) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/rooms/id/"+url.PathEscape(id), updates)
}

func (c *DirectoryClient) DeleteRoom(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/rooms/id/" + url.PathEscape(id))
}

func (c *DirectoryClient) CreatePackage(pkg *model.Package) (*Response, error) {
	return c.httpClient.POST("/api/v1/packages", pkg)
}

func (c *DirectoryClient) GetPackage(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/packages/id/" + url.PathEscape(id))
}

func (c *DirectoryClient) DeletePackage(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/packages/id/" + url.PathEscape(id))
}

func (c *DirectoryClient) DecodeRoom(resp *Response) (*model.Room, error) {
	return DecodeData[model.Room](resp)
}

func (c *DirectoryClient) DecodeRooms(resp *Response) ([]*model.Room, *Metadata, error) {
	return DecodePage[model.Room](resp)
}

func (c *DirectoryClient) DecodePackage(resp *Response) (*model.Package, error) {
	return DecodeData[model.Package](resp)
}
