// internal/pkg/nacos/client.go
package nacos

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"mall/internal/pkg/logger"

	"github.com/nacos-group/nacos-sdk-go/v2/clients"
	"github.com/nacos-group/nacos-sdk-go/v2/clients/naming_client"
	"github.com/nacos-group/nacos-sdk-go/v2/common/constant"
	"github.com/nacos-group/nacos-sdk-go/v2/model"
	"github.com/nacos-group/nacos-sdk-go/v2/vo"
)

// Client 封装 Nacos 命名客户端：注册、注销、按需发现。
// 发现不做本地缓存，每次跨服务调用都实时查一次注册中心。
type Client struct {
	namingClient naming_client.INamingClient
	namespaceId  string
	groupName    string
}

// NewClient 创建 Nacos 客户端。addrs 格式 "ip1:port1,ip2:port2"。
func NewClient(addrs, namespaceId, groupName string) (*Client, error) {
	if groupName == "" {
		groupName = "DEFAULT_GROUP"
	}

	var serverConfigs []constant.ServerConfig
	for _, addr := range strings.Split(addrs, ",") {
		parts := strings.Split(strings.TrimSpace(addr), ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid nacos address format: %s", addr)
		}
		port, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid port in nacos address: %s", parts[1])
		}
		serverConfigs = append(serverConfigs, *constant.NewServerConfig(parts[0], port))
	}

	clientConfig := *constant.NewClientConfig(
		constant.WithNotLoadCacheAtStart(true),
		constant.WithLogDir("/tmp/nacos/log"),
		constant.WithCacheDir("/tmp/nacos/cache"),
		constant.WithLogLevel("warn"),
		constant.WithNamespaceId(namespaceId),
	)

	namingClient, err := clients.NewNamingClient(
		vo.NacosClientParam{
			ClientConfig:  &clientConfig,
			ServerConfigs: serverConfigs,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create nacos naming client: %w", err)
	}

	return &Client{
		namingClient: namingClient,
		namespaceId:  namespaceId,
		groupName:    groupName,
	}, nil
}

// Register 把一个服务实例注册为临时节点，心跳断开后自动摘除。
func (c *Client) Register(serviceName, ip string, port int, metadata map[string]string) error {
	success, err := c.namingClient.RegisterInstance(vo.RegisterInstanceParam{
		Ip:          ip,
		Port:        uint64(port),
		ServiceName: serviceName,
		Weight:      10,
		Enable:      true,
		Healthy:     true,
		Ephemeral:   true,
		Metadata:    metadata,
		GroupName:   c.groupName,
	})
	if err != nil {
		return fmt.Errorf("failed to register service with nacos: %w", err)
	}
	if !success {
		return fmt.Errorf("nacos registration was not successful for service: %s", serviceName)
	}
	logger.Ctx(context.Background()).Printf("✅ Service '%s' registered to Nacos (%s:%d)", serviceName, ip, port)
	return nil
}

// Deregister 在优雅关停时注销实例。
func (c *Client) Deregister(serviceName, ip string, port int) error {
	_, err := c.namingClient.DeregisterInstance(vo.DeregisterInstanceParam{
		Ip:          ip,
		Port:        uint64(port),
		ServiceName: serviceName,
		Ephemeral:   true,
		GroupName:   c.groupName,
	})
	if err != nil {
		return fmt.Errorf("failed to deregister service with nacos: %w", err)
	}
	logger.Ctx(context.Background()).Printf("Service '%s' deregistered from Nacos (%s:%d)", serviceName, ip, port)
	return nil
}

// Discover 按逻辑服务名解析一个健康实例。
// predicate 为空时直接用 Nacos 内置的负载均衡选一个；
// 否则先取全部健康实例，再用表达式过滤实例元数据。
func (c *Client) Discover(serviceName string, predicate *Predicate) (string, int, error) {
	if predicate == nil {
		instance, err := c.namingClient.SelectOneHealthyInstance(vo.SelectOneHealthInstanceParam{
			ServiceName: serviceName,
			GroupName:   c.groupName,
		})
		if err != nil {
			return "", 0, fmt.Errorf("failed to discover healthy instance for service '%s': %w", serviceName, err)
		}
		if instance == nil {
			return "", 0, fmt.Errorf("no healthy instance available for service '%s'", serviceName)
		}
		return instance.Ip, int(instance.Port), nil
	}

	instances, err := c.namingClient.SelectInstances(vo.SelectInstancesParam{
		ServiceName: serviceName,
		GroupName:   c.groupName,
		HealthyOnly: true,
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to list healthy instances for service '%s': %w", serviceName, err)
	}
	for _, inst := range instances {
		ok, err := predicate.Match(instanceMetadata(inst))
		if err != nil {
			return "", 0, fmt.Errorf("predicate evaluation failed for service '%s': %w", serviceName, err)
		}
		if ok {
			return inst.Ip, int(inst.Port), nil
		}
	}
	return "", 0, fmt.Errorf("no healthy instance of '%s' matched predicate", serviceName)
}

func instanceMetadata(inst model.Instance) map[string]string {
	if inst.Metadata != nil {
		return inst.Metadata
	}
	return map[string]string{}
}
