package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// PointsTable 积分表列。MySQL 使用 JSON 类型，SQLite 使用 TEXT，
// 避免旧版单个数字被 SQLite 按数值存储后无法读回
type PointsTable datatypes.JSON

func (p PointsTable) Value() (driver.Value, error) {
	return datatypes.JSON(p).Value()
}

// Scan 兼容驱动返回的数值类型（旧库中 JSON 列可能是数值亲和）
func (p *PointsTable) Scan(value interface{}) error {
	var raw datatypes.JSON
	switch v := value.(type) {
	case nil:
		*p = nil
		return nil
	case int64:
		raw = datatypes.JSON(strconv.FormatInt(v, 10))
	case float64:
		raw = datatypes.JSON(strconv.FormatFloat(v, 'f', -1, 64))
	case []byte, string:
		if err := raw.Scan(v); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported points table value %T", value)
	}
	*p = PointsTable(raw)
	return nil
}

func (p PointsTable) MarshalJSON() ([]byte, error) {
	return datatypes.JSON(p).MarshalJSON()
}

func (p *PointsTable) UnmarshalJSON(b []byte) error {
	return (*datatypes.JSON)(p).UnmarshalJSON(b)
}

func (PointsTable) GormDataType() string {
	return "json"
}

func (PointsTable) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "text"
	}
	return datatypes.JSON{}.GormDBDataType(db, field)
}
