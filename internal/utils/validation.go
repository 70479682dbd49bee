package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetQueryParamAsBool reads a boolean query parameter, falling back to defaultValue when absent.
func GetQueryParamAsBool(c *gin.Context, paramName string, defaultValue bool) (bool, error) {
	paramValue := c.Query(paramName)
	if paramValue == "" {
		return defaultValue, nil
	}

	boolValue, err := strconv.ParseBool(paramValue)
	if err != nil {
		return false, fmt.Errorf("invalid %s", paramName)
	}
	return boolValue, nil
}

func GetQueryParamAsInt(c *gin.Context, paramName string, defaultValue int) (int, error) {
	paramValue := c.Query(paramName)
	if paramValue == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(paramValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", paramName)
	}

	if intValue <= 0 {
		return 0, fmt.Errorf("invalid %s", paramName)
	}

	return intValue, nil
}
