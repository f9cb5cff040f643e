package report

import (
	"fmt"
	"strings"
)

type Language string

const (
	English Language = "en"
	Korean  Language = "ko"
)

func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "en", "english":
		return English, nil
	case "ko", "kr", "korean":
		return Korean, nil
	}
	return "", fmt.Errorf("unsupported language %q (use en or ko)", s)
}

// Strings holds every user-facing label for one language.
type Strings struct {
	Title     string
	Loading   string
	StepNames [8]string // indexed by pipeline step
	Saved     string
	Unchanged string
	Failed    string
	Retrying  string
	HelpBusy  string
	HelpDone  string

	Item                 string
	Value                string
	Tag                  string
	Name                 string
	State                string
	Account              string
	Region               string
	DNSSupport           string
	DNSHostnames         string
	Subnets              string
	Subnet               string
	InternetGateway      string
	AttachedVPC          string
	NATGateway           string
	AvailabilityMode     string
	Zonal                string
	Regional             string
	IPAutoScaling        string
	ZoneAutoProvisioning string
	Enabled              string
	Disabled             string
	ConnectivityType     string
	Public               string
	Private              string
	AllocationID         string
	RouteTables          string
	Destination          string
	Target               string
	AssociatedSubnets    string
	ElasticIPs           string
	Association          string
	Instance             string
	PrivateIP            string
	NetworkDiagram       string

	EC2Instance         string
	AMI                 string
	InstanceType        string
	Platform            string
	Architecture        string
	KeyPair             string
	AZ                  string
	PublicIP            string
	SecurityGroups      string
	EBSOptimized        string
	Monitoring          string
	IAMRole             string
	LaunchTime          string
	Storage             string
	Device              string
	VolumeID            string
	SizeGB              string
	Type                string
	Encrypted           string
	DeleteOnTermination string
	UserData            string
	SecurityGroup       string
	Description         string
	InboundRules        string
	OutboundRules       string
	Protocol            string
	PortRange           string
	Source              string
	LoadBalancer        string
	DNSName             string
	Scheme              string
	IPAddressType       string
	Listeners           string
	Port                string
	DefaultAction       string
	TargetGroups        string
	TargetType          string
	HealthCheck         string
	Thresholds          string
	TargetID            string
	ECRRepository       string
	TagMutability       string
	Mutable             string
	Immutable           string
	Encryption          string
	ImageCount          string
	CreatedAt           string
	Images              string
	SizeMB              string
	PushedAt            string
	ScanStatus          string
}

var english = Strings{
	Title:   "Network",
	Loading: "Loading Network details",
	StepNames: [8]string{
		"VPC Basic Info",
		"Subnets",
		"Internet Gateway",
		"NAT Gateway",
		"Route Tables",
		"Elastic IP",
		"DNS Settings",
		"Completing",
	},
	Saved:     "Report written to %s",
	Unchanged: "No changes since the last report",
	Failed:    "failed",
	Retrying:  "Retrying failed steps (%d/%d)",
	HelpBusy:  "q quit",
	HelpDone:  "1-7 refresh step • r refresh all • q quit",

	Item:                 "Item",
	Value:                "Value",
	Tag:                  "Tag",
	Name:                 "Name",
	State:                "State",
	Account:              "Account",
	Region:               "Region",
	DNSSupport:           "DNS resolution",
	DNSHostnames:         "DNS hostnames",
	Subnets:              "Subnets",
	Subnet:               "Subnet",
	InternetGateway:      "Internet Gateway",
	AttachedVPC:          "Attached VPC",
	NATGateway:           "NAT Gateway",
	AvailabilityMode:     "Availability mode",
	Zonal:                "Zonal",
	Regional:             "Regional",
	IPAutoScaling:        "IP auto scaling",
	ZoneAutoProvisioning: "Zone auto provisioning",
	Enabled:              "Enabled",
	Disabled:             "Disabled",
	ConnectivityType:     "Connectivity type",
	Public:               "Public",
	Private:              "Private",
	AllocationID:         "Elastic IP allocation ID",
	RouteTables:          "Route Tables",
	Destination:          "Destination",
	Target:               "Target",
	AssociatedSubnets:    "Associated subnets",
	ElasticIPs:           "Elastic IPs",
	Association:          "Association",
	Instance:             "Instance",
	PrivateIP:            "Private IP",
	NetworkDiagram:       "Network Diagram",

	EC2Instance:         "EC2 Instance",
	AMI:                 "AMI",
	InstanceType:        "Instance type",
	Platform:            "Platform",
	Architecture:        "Architecture",
	KeyPair:             "Key pair",
	AZ:                  "Availability zone",
	PublicIP:            "Public IP",
	SecurityGroups:      "Security groups",
	EBSOptimized:        "EBS optimized",
	Monitoring:          "Monitoring",
	IAMRole:             "IAM role",
	LaunchTime:          "Launch time",
	Storage:             "Storage",
	Device:              "Device",
	VolumeID:            "Volume ID",
	SizeGB:              "Size (GB)",
	Type:                "Type",
	Encrypted:           "Encrypted",
	DeleteOnTermination: "Delete on termination",
	UserData:            "User Data",
	SecurityGroup:       "Security Group",
	Description:         "Description",
	InboundRules:        "Inbound Rules",
	OutboundRules:       "Outbound Rules",
	Protocol:            "Protocol",
	PortRange:           "Port range",
	Source:              "Source",
	LoadBalancer:        "Load Balancer",
	DNSName:             "DNS name",
	Scheme:              "Scheme",
	IPAddressType:       "IP address type",
	Listeners:           "Listeners",
	Port:                "Port",
	DefaultAction:       "Default action",
	TargetGroups:        "Target Groups",
	TargetType:          "Target type",
	HealthCheck:         "Health check",
	Thresholds:          "Thresholds (healthy/unhealthy)",
	TargetID:            "Target ID",
	ECRRepository:       "ECR Repository",
	TagMutability:       "Tag mutability",
	Mutable:             "Mutable",
	Immutable:           "Immutable",
	Encryption:          "Encryption",
	ImageCount:          "Image count",
	CreatedAt:           "Created",
	Images:              "Images",
	SizeMB:              "Size (MB)",
	PushedAt:            "Pushed at",
	ScanStatus:          "Scan status",
}

var korean = Strings{
	Title:   "Network",
	Loading: "Network 상세 정보 조회 중",
	StepNames: [8]string{
		"VPC 기본 정보",
		"서브넷",
		"인터넷 게이트웨이",
		"NAT 게이트웨이",
		"라우팅 테이블",
		"Elastic IP",
		"DNS 설정",
		"완료 중",
	},
	Saved:     "보고서 저장: %s",
	Unchanged: "마지막 보고서 이후 변경 사항 없음",
	Failed:    "실패",
	Retrying:  "실패한 단계 재시도 (%d/%d)",
	HelpBusy:  "q 종료",
	HelpDone:  "1-7 단계 새로고침 • r 전체 새로고침 • q 종료",

	Item:                 "항목",
	Value:                "값",
	Tag:                  "태그",
	Name:                 "이름",
	State:                "상태",
	Account:              "계정",
	Region:               "리전",
	DNSSupport:           "DNS 확인",
	DNSHostnames:         "DNS 호스트 이름",
	Subnets:              "서브넷",
	Subnet:               "서브넷",
	InternetGateway:      "인터넷 게이트웨이",
	AttachedVPC:          "연결된 VPC",
	NATGateway:           "NAT 게이트웨이",
	AvailabilityMode:     "가용성 모드",
	Zonal:                "영역",
	Regional:             "리전",
	IPAutoScaling:        "IP 자동 확장",
	ZoneAutoProvisioning: "영역 자동 프로비저닝",
	Enabled:              "활성화",
	Disabled:             "비활성화",
	ConnectivityType:     "연결 유형",
	Public:               "퍼블릭",
	Private:              "프라이빗",
	AllocationID:         "Elastic IP 할당 ID",
	RouteTables:          "라우팅 테이블",
	Destination:          "대상",
	Target:               "타깃",
	AssociatedSubnets:    "연결된 서브넷",
	ElasticIPs:           "Elastic IP",
	Association:          "연결",
	Instance:             "인스턴스",
	PrivateIP:            "프라이빗 IP",
	NetworkDiagram:       "네트워크 다이어그램",

	EC2Instance:         "EC2 인스턴스",
	AMI:                 "AMI",
	InstanceType:        "인스턴스 유형",
	Platform:            "플랫폼",
	Architecture:        "아키텍처",
	KeyPair:             "키 페어",
	AZ:                  "가용 영역",
	PublicIP:            "퍼블릭 IP",
	SecurityGroups:      "보안 그룹",
	EBSOptimized:        "EBS 최적화",
	Monitoring:          "모니터링",
	IAMRole:             "IAM 역할",
	LaunchTime:          "시작 시간",
	Storage:             "스토리지",
	Device:              "디바이스",
	VolumeID:            "볼륨 ID",
	SizeGB:              "크기 (GB)",
	Type:                "유형",
	Encrypted:           "암호화",
	DeleteOnTermination: "종료 시 삭제",
	UserData:            "사용자 데이터",
	SecurityGroup:       "보안 그룹",
	Description:         "설명",
	InboundRules:        "인바운드 규칙",
	OutboundRules:       "아웃바운드 규칙",
	Protocol:            "프로토콜",
	PortRange:           "포트 범위",
	Source:              "소스",
	LoadBalancer:        "로드 밸런서",
	DNSName:             "DNS 이름",
	Scheme:              "체계",
	IPAddressType:       "IP 주소 유형",
	Listeners:           "리스너",
	Port:                "포트",
	DefaultAction:       "기본 작업",
	TargetGroups:        "대상 그룹",
	TargetType:          "대상 유형",
	HealthCheck:         "상태 검사",
	Thresholds:          "임계값 (정상/비정상)",
	TargetID:            "대상 ID",
	ECRRepository:       "ECR 레포지토리",
	TagMutability:       "태그 변경 가능성",
	Mutable:             "변경 가능",
	Immutable:           "변경 불가",
	Encryption:          "암호화",
	ImageCount:          "이미지 수",
	CreatedAt:           "생성일",
	Images:              "이미지 목록",
	SizeMB:              "크기 (MB)",
	PushedAt:            "푸시 날짜",
	ScanStatus:          "스캔 상태",
}

func For(lang Language) Strings {
	if lang == Korean {
		return korean
	}
	return english
}
